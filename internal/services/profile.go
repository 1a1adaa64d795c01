package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/smartassist-backend/internal/data/repos"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

type ProfileService interface {
	// GetProfile returns nil without error when the user never onboarded.
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error)
	ListProfiles(ctx context.Context, userType string) ([]*types.Profile, error)
}

type profileService struct {
	db       *gorm.DB
	log      *logger.Logger
	profiles repos.ProfileRepo
}

func NewProfileService(db *gorm.DB, baseLog *logger.Logger, profiles repos.ProfileRepo) ProfileService {
	return &profileService{
		db:       db,
		log:      baseLog.With("service", "ProfileService"),
		profiles: profiles,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	return s.profiles.GetByUserID(dbctx.New(ctx), userID)
}

func (s *profileService) ListProfiles(ctx context.Context, userType string) ([]*types.Profile, error) {
	return s.profiles.List(dbctx.New(ctx), userType)
}
