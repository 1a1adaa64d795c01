package classroom

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

type TutorialRepo interface {
	// Upsert inserts or refreshes a tutorial keyed by its human code.
	Upsert(dbc dbctx.Context, tut *types.Tutorial) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Tutorial, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Tutorial, error)
	List(dbc dbctx.Context) ([]*types.Tutorial, error)
}

type tutorialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTutorialRepo(db *gorm.DB, baseLog *logger.Logger) TutorialRepo {
	return &tutorialRepo{db: db, log: baseLog.With("repo", "TutorialRepo")}
}

func (r *tutorialRepo) Upsert(dbc dbctx.Context, tut *types.Tutorial) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	if tut.ID == uuid.Nil {
		tut.ID = uuid.New()
	}
	if tut.CreatedAt.IsZero() {
		tut.CreatedAt = now
	}
	tut.UpdatedAt = now
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tutorial_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "steps", "updated_at"}),
		}).
		Create(tut).Error
	if err != nil {
		return wrap("upsert tutorial", err)
	}
	// On conflict the generated ID was not stored; reload the canonical row.
	stored, err := r.GetByCode(dbc, tut.TutorialID)
	if err != nil {
		return err
	}
	if stored != nil {
		*tut = *stored
	}
	return nil
}

func (r *tutorialRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Tutorial, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Tutorial
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, wrap("get tutorial", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *tutorialRepo) GetByCode(dbc dbctx.Context, code string) (*types.Tutorial, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if code == "" {
		return nil, nil
	}
	var row types.Tutorial
	if err := t.WithContext(dbc.Ctx).Where("tutorial_id = ?", code).Limit(1).Find(&row).Error; err != nil {
		return nil, wrap("get tutorial by code", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *tutorialRepo) List(dbc dbctx.Context) ([]*types.Tutorial, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Tutorial
	if err := t.WithContext(dbc.Ctx).Order("created_at ASC, tutorial_id ASC").Find(&out).Error; err != nil {
		return nil, wrap("list tutorials", err)
	}
	return out, nil
}
