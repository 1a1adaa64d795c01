package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, name, userType string) *types.Profile {
	tb.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &types.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	p := &types.Profile{
		ID:        uuid.New(),
		UserID:    u.ID,
		Name:      name,
		UserType:  userType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

// SeedTutorial creates a tutorial with a unique code derived from prefix.
func SeedTutorial(tb testing.TB, ctx context.Context, tx *gorm.DB, prefix string, steps int) *types.Tutorial {
	tb.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	content := make(datatypes.JSONSlice[string], 0, steps)
	for i := 0; i < steps; i++ {
		content = append(content, fmt.Sprintf("step %d", i+1))
	}
	tut := &types.Tutorial{
		ID:         uuid.New(),
		TutorialID: prefix + "-" + uuid.NewString()[:8],
		Title:      prefix,
		Steps:      content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(tut).Error; err != nil {
		tb.Fatalf("seed tutorial: %v", err)
	}
	return tut
}
