package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/smartassist-backend/internal/data/repos"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

type TutorialService interface {
	List(ctx context.Context) ([]*types.Tutorial, error)
	// Get resolves either the row UUID or the human code such as "TUT001".
	Get(ctx context.Context, ref string) (*types.Tutorial, error)
	Resolve(dbc dbctx.Context, ref string) (*types.Tutorial, error)
	Seed(ctx context.Context, catalog []*types.Tutorial) error
}

type tutorialService struct {
	db        *gorm.DB
	log       *logger.Logger
	tutorials repos.TutorialRepo
}

func NewTutorialService(db *gorm.DB, baseLog *logger.Logger, tutorials repos.TutorialRepo) TutorialService {
	return &tutorialService{
		db:        db,
		log:       baseLog.With("service", "TutorialService"),
		tutorials: tutorials,
	}
}

func (s *tutorialService) List(ctx context.Context) ([]*types.Tutorial, error) {
	return s.tutorials.List(dbctx.New(ctx))
}

func (s *tutorialService) Get(ctx context.Context, ref string) (*types.Tutorial, error) {
	return s.Resolve(dbctx.New(ctx), ref)
}

func (s *tutorialService) Resolve(dbc dbctx.Context, ref string) (*types.Tutorial, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apierr.Validation("missing_tutorial", "tutorial id is required")
	}
	var (
		tut *types.Tutorial
		err error
	)
	if id, perr := uuid.Parse(ref); perr == nil {
		tut, err = s.tutorials.GetByID(dbc, id)
	} else {
		tut, err = s.tutorials.GetByCode(dbc, ref)
	}
	if err != nil {
		return nil, err
	}
	if tut == nil {
		return nil, apierr.NotFound("tutorial_not_found")
	}
	return tut, nil
}

func (s *tutorialService) Seed(ctx context.Context, catalog []*types.Tutorial) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for _, tut := range catalog {
			if err := s.tutorials.Upsert(dbc, tut); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("Tutorial catalogue seeded", "count", len(catalog))
	return nil
}
