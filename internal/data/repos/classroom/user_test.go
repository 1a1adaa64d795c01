package classroom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/smartassist-backend/internal/data/repos/testutil"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
)

func TestUserRepoDuplicateEmailIsConflict(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	if err := repo.Create(dbc, &types.User{Email: "Dup@Example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByEmail(dbc, "dup@example.com")
	if err != nil || got == nil {
		t.Fatalf("GetByEmail: got=%v err=%v", got, err)
	}

	// Rolling back to a savepoint keeps the postgres tx usable after the failure.
	tx.SavePoint("dup")
	err = repo.Create(dbc, &types.User{Email: "dup@example.com", PasswordHash: "y", CreatedAt: now, UpdatedAt: now})
	tx.RollbackTo("dup")
	if !errors.Is(err, apierr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
