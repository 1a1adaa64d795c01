package classroom

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

type ErrorLogFilter struct {
	StudentID       uuid.UUID
	IncludeResolved bool
	Limit           int
}

type ErrorLogRepo interface {
	Create(dbc dbctx.Context, row *types.ErrorLog) error
	List(dbc dbctx.Context, f ErrorLogFilter) ([]*types.ErrorLog, error)
	Resolve(dbc dbctx.Context, id uuid.UUID) (int64, error)
}

type errorLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewErrorLogRepo(db *gorm.DB, baseLog *logger.Logger) ErrorLogRepo {
	return &errorLogRepo{db: db, log: baseLog.With("repo", "ErrorLogRepo")}
}

func (r *errorLogRepo) Create(dbc dbctx.Context, row *types.ErrorLog) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return wrap("insert error log", t.WithContext(dbc.Ctx).Create(row).Error)
}

func (r *errorLogRepo) List(dbc dbctx.Context, f ErrorLogFilter) ([]*types.ErrorLog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	q := t.WithContext(dbc.Ctx).Model(&types.ErrorLog{})
	if f.StudentID != uuid.Nil {
		q = q.Where("student_id = ?", f.StudentID)
	}
	if !f.IncludeResolved {
		q = q.Where("resolved = ?", false)
	}
	var out []*types.ErrorLog
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, wrap("list error logs", err)
	}
	return out, nil
}

func (r *errorLogRepo) Resolve(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.ErrorLog{}).
		Where("id = ?", id).
		Update("resolved", true)
	return res.RowsAffected, wrap("resolve error log", res.Error)
}
