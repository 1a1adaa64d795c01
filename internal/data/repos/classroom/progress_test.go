package classroom

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/smartassist-backend/internal/data/repos/testutil"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
)

func TestProgressRepoInsertIfAbsent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	student := testutil.SeedProfile(t, ctx, tx, "s1", types.UserTypeStudent)
	tut := testutil.SeedTutorial(t, ctx, tx, "TUT", 4)
	repo := NewProgressRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	inserted, err := repo.InsertIfAbsent(dbc, &types.Progress{StudentID: student.UserID, TutorialID: tut.ID, StartedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}
	if !inserted {
		t.Fatalf("InsertIfAbsent: expected first call to insert")
	}
	inserted, err = repo.InsertIfAbsent(dbc, &types.Progress{StudentID: student.UserID, TutorialID: tut.ID, CurrentStep: 2, StartedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("InsertIfAbsent (again): %v", err)
	}
	if inserted {
		t.Fatalf("InsertIfAbsent (again): expected no insert")
	}

	rows, err := repo.ListByStudent(dbc, student.UserID)
	if err != nil {
		t.Fatalf("ListByStudent: %v", err)
	}
	if len(rows) != 1 || rows[0].CurrentStep != 0 {
		t.Fatalf("expected single row at step 0, got %+v", rows)
	}

	if err := repo.UpdateStep(dbc, rows[0].ID, 1, []int{0}, now.Add(time.Second)); err != nil {
		t.Fatalf("UpdateStep: %v", err)
	}
	got, err := repo.GetForUpdate(dbc, student.UserID, tut.ID)
	if err != nil {
		t.Fatalf("GetForUpdate: %v", err)
	}
	if got == nil || got.CurrentStep != 1 || len(got.CompletedSteps) != 1 || got.CompletedSteps[0] != 0 {
		t.Fatalf("unexpected progress after update: %+v", got)
	}

	missing, err := repo.Get(dbc, student.UserID, testutil.SeedTutorial(t, ctx, tx, "OTHER", 2).ID)
	if err != nil {
		t.Fatalf("Get (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("Get (missing): expected nil, got %+v", missing)
	}
}
