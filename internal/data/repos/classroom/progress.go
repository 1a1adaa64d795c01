package classroom

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

type ProgressRepo interface {
	// InsertIfAbsent creates the row unless one exists for the pair and
	// reports whether this call inserted it.
	InsertIfAbsent(dbc dbctx.Context, p *types.Progress) (bool, error)
	Get(dbc dbctx.Context, studentID, tutorialID uuid.UUID) (*types.Progress, error)
	// GetForUpdate row-locks the pair inside the caller's transaction.
	GetForUpdate(dbc dbctx.Context, studentID, tutorialID uuid.UUID) (*types.Progress, error)
	UpdateStep(dbc dbctx.Context, id uuid.UUID, step int, completed []int, at time.Time) error
	ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.Progress, error)
	List(dbc dbctx.Context) ([]*types.Progress, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) InsertIfAbsent(dbc dbctx.Context, p *types.Progress) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CompletedSteps == nil {
		p.CompletedSteps = datatypes.JSONSlice[int]{}
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "tutorial_id"}},
			DoNothing: true,
		}).
		Create(p)
	if res.Error != nil {
		return false, wrap("upsert progress", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *progressRepo) Get(dbc dbctx.Context, studentID, tutorialID uuid.UUID) (*types.Progress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return r.get(t.WithContext(dbc.Ctx), studentID, tutorialID)
}

func (r *progressRepo) GetForUpdate(dbc dbctx.Context, studentID, tutorialID uuid.UUID) (*types.Progress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return r.get(t.WithContext(dbc.Ctx).Clauses(clause.Locking{Strength: "UPDATE"}), studentID, tutorialID)
}

func (r *progressRepo) get(q *gorm.DB, studentID, tutorialID uuid.UUID) (*types.Progress, error) {
	if studentID == uuid.Nil || tutorialID == uuid.Nil {
		return nil, nil
	}
	var row types.Progress
	if err := q.Where("student_id = ? AND tutorial_id = ?", studentID, tutorialID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, wrap("get progress", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *progressRepo) UpdateStep(dbc dbctx.Context, id uuid.UUID, step int, completed []int, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if completed == nil {
		completed = []int{}
	}
	return wrap("update progress", t.WithContext(dbc.Ctx).
		Model(&types.Progress{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current_step":    step,
			"completed_steps": datatypes.JSONSlice[int](completed),
			"updated_at":      at,
		}).Error)
}

func (r *progressRepo) ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.Progress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Progress
	if err := t.WithContext(dbc.Ctx).
		Where("student_id = ?", studentID).
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, wrap("list progress", err)
	}
	return out, nil
}

// List returns every row, most recently updated first.
func (r *progressRepo) List(dbc dbctx.Context) ([]*types.Progress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Progress
	if err := t.WithContext(dbc.Ctx).Order("updated_at DESC, id ASC").Find(&out).Error; err != nil {
		return nil, wrap("list progress", err)
	}
	return out, nil
}
