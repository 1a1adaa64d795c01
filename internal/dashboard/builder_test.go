package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/smartassist-backend/internal/data/repos"
	"github.com/yungbote/smartassist-backend/internal/data/repos/testutil"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
)

func TestBuilderRebuildFromStore(t *testing.T) {
	if testutil.UsingPostgres() {
		t.Skip("counts assume an isolated database")
	}
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	dbc := dbctx.Context{Ctx: ctx}

	s1 := testutil.SeedProfile(t, ctx, db, "s1", types.UserTypeStudent)
	testutil.SeedProfile(t, ctx, db, "s2", types.UserTypeStudent)
	testutil.SeedProfile(t, ctx, db, "teacher", types.UserTypeTeacher)
	tut := testutil.SeedTutorial(t, ctx, db, "TUT", 4)

	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err := set.Progress.InsertIfAbsent(dbc, &types.Progress{
		ID: uuid.New(), StudentID: s1.UserID, TutorialID: tut.ID, CurrentStep: 2, StartedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, set.CodeLogs.Create(dbc, &types.CodeLog{
			ID: uuid.New(), StudentID: s1.UserID, Code: "v", Timestamp: now.Add(time.Duration(i) * time.Second),
		}))
	}

	view, err := NewBuilder(log, set, nil).Rebuild(ctx)
	require.NoError(t, err)
	require.Len(t, view.Students, 2)
	assert.Equal(t, 1, view.Summary.ActiveCoders)
	assert.InDelta(t, 75.0, view.Summary.AverageCompletion, 0.001)

	for _, row := range view.Students {
		if row.Student.UserID == s1.UserID {
			require.NotNil(t, row.LatestCode)
			assert.True(t, row.LatestCode.Timestamp.Equal(now.Add(2*time.Second)))
			require.NotNil(t, row.Tutorial)
			assert.Equal(t, tut.ID, row.Tutorial.ID)
		}
	}
}
