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

type HelpRequestRepo interface {
	Create(dbc dbctx.Context, h *types.HelpRequest) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.HelpRequest, error)
	GetForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.HelpRequest, error)
	// Respond writes response, teacher, status and timestamps in one statement.
	Respond(dbc dbctx.Context, id, teacherID uuid.UUID, response string, at time.Time) (int64, error)
	ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.HelpRequest, error)
	// List returns requests newest first; an empty status lists all of them.
	List(dbc dbctx.Context, status string) ([]*types.HelpRequest, error)
}

type helpRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHelpRequestRepo(db *gorm.DB, baseLog *logger.Logger) HelpRequestRepo {
	return &helpRequestRepo{db: db, log: baseLog.With("repo", "HelpRequestRepo")}
}

func (r *helpRequestRepo) Create(dbc dbctx.Context, h *types.HelpRequest) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return wrap("insert help request", t.WithContext(dbc.Ctx).Create(h).Error)
}

func (r *helpRequestRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.HelpRequest, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return r.get(t.WithContext(dbc.Ctx), id)
}

func (r *helpRequestRepo) GetForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.HelpRequest, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return r.get(t.WithContext(dbc.Ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *helpRequestRepo) get(q *gorm.DB, id uuid.UUID) (*types.HelpRequest, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.HelpRequest
	if err := q.Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, wrap("get help request", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *helpRequestRepo) Respond(dbc dbctx.Context, id, teacherID uuid.UUID, response string, at time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.HelpRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"response":     response,
			"teacher_id":   teacherID,
			"status":       types.HelpStatusResponded,
			"responded_at": at,
			"updated_at":   at,
		})
	return res.RowsAffected, wrap("respond help request", res.Error)
}

func (r *helpRequestRepo) ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.HelpRequest, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.HelpRequest
	if err := t.WithContext(dbc.Ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC, id ASC").
		Find(&out).Error; err != nil {
		return nil, wrap("list help requests", err)
	}
	return out, nil
}

func (r *helpRequestRepo) List(dbc dbctx.Context, status string) ([]*types.HelpRequest, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.HelpRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []*types.HelpRequest
	if err := q.Order("created_at DESC, id ASC").Find(&out).Error; err != nil {
		return nil, wrap("list help requests", err)
	}
	return out, nil
}
