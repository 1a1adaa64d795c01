package classroom

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/smartassist-backend/internal/data/repos/testutil"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
)

func TestHelpRequestRepoRespond(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewHelpRequestRepo(db, testutil.Logger(t))

	student := testutil.SeedProfile(t, ctx, tx, "s1", types.UserTypeStudent)
	teacher := testutil.SeedProfile(t, ctx, tx, "t1", types.UserTypeTeacher)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	older := &types.HelpRequest{StudentID: student.UserID, Message: "stuck on loops", Status: types.HelpStatusPending, CreatedAt: base, UpdatedAt: base}
	newer := &types.HelpRequest{StudentID: student.UserID, Message: "what is const", Status: types.HelpStatusPending, CreatedAt: base.Add(time.Minute), UpdatedAt: base.Add(time.Minute)}
	for _, h := range []*types.HelpRequest{older, newer} {
		if err := repo.Create(dbc, h); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	mine, err := repo.ListByStudent(dbc, student.UserID)
	if err != nil {
		t.Fatalf("ListByStudent: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != newer.ID {
		t.Fatalf("expected newest first, got %+v", mine)
	}

	at := base.Add(time.Hour)
	n, err := repo.Respond(dbc, older.ID, teacher.UserID, "use a for loop", at)
	if err != nil || n != 1 {
		t.Fatalf("Respond: n=%d err=%v", n, err)
	}
	got, err := repo.GetByID(dbc, older.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != types.HelpStatusResponded || got.Response == nil || *got.Response != "use a for loop" ||
		got.TeacherID == nil || *got.TeacherID != teacher.UserID || got.RespondedAt == nil {
		t.Fatalf("respond fields not all set: %+v", got)
	}

	pending, err := repo.List(dbc, types.HelpStatusPending)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, h := range pending {
		if h.ID == older.ID {
			t.Fatalf("responded request listed as pending")
		}
	}
}
