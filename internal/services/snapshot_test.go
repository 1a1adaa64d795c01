package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/smartassist-backend/internal/data/repos/testutil"
	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
	"github.com/yungbote/smartassist-backend/internal/realtime"
)

func TestCaptureAppendsAndLatestFollowsTimestamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewSnapshotService(f.db, testutil.Logger(t), f.repos.CodeLogs, f.notify, nil).(*snapshotService)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	s1, s2 := uuid.New(), uuid.New()
	step := 2
	for _, code := range []string{"let a", "let a = 1", "let a = 1;"} {
		_, err := svc.Capture(ctx, CaptureInput{StudentID: s1, Code: code, StepNumber: &step})
		require.NoError(t, err)
	}
	sub, err := svc.Capture(ctx, CaptureInput{StudentID: s2, Code: "console.log(1)", IsSubmission: true})
	require.NoError(t, err)
	assert.True(t, sub.IsSubmission)

	mine, err := svc.List(ctx, s1, 0)
	require.NoError(t, err)
	require.Len(t, mine, 3, "every capture appends a row")

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	byStudent := map[uuid.UUID]string{}
	for _, row := range latest {
		byStudent[row.StudentID] = row.Code
	}
	assert.Equal(t, "let a = 1;", byStudent[s1])
	assert.Equal(t, "console.log(1)", byStudent[s2])
	assert.Equal(t, 4, f.pub.count(realtime.TableCodeLogs))
}

func TestEmptySubmissionIsRejectedWithoutWriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewSnapshotService(f.db, testutil.Logger(t), f.repos.CodeLogs, f.notify, nil)

	student := uuid.New()
	_, err := svc.Capture(ctx, CaptureInput{StudentID: student, Code: "  \n\t ", IsSubmission: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrValidation)

	rows, err := svc.List(ctx, student, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, f.pub.count(realtime.TableCodeLogs))
}
