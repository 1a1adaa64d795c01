package classroom

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, s *types.Session) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error)
	// CloseOthers ends every active session of the student except keep.
	CloseOthers(dbc dbctx.Context, studentID, keep uuid.UUID, at time.Time) (int64, error)
	// Touch refreshes last_activity of an active session and reports rows updated.
	Touch(dbc dbctx.Context, id, studentID uuid.UUID, at time.Time) (int64, error)
	Close(dbc dbctx.Context, id, studentID uuid.UUID, at time.Time) (int64, error)
	ListActive(dbc dbctx.Context) ([]*types.Session, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(dbc dbctx.Context, s *types.Session) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return wrap("insert session", t.WithContext(dbc.Ctx).Create(s).Error)
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Session
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, wrap("get session", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sessionRepo) CloseOthers(dbc dbctx.Context, studentID, keep uuid.UUID, at time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).
		Model(&types.Session{}).
		Where("student_id = ? AND is_active = ?", studentID, true)
	if keep != uuid.Nil {
		q = q.Where("id <> ?", keep)
	}
	res := q.Updates(map[string]any{"is_active": false, "session_end": at})
	return res.RowsAffected, wrap("close sessions", res.Error)
}

func (r *sessionRepo) Touch(dbc dbctx.Context, id, studentID uuid.UUID, at time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Session{}).
		Where("id = ? AND student_id = ? AND is_active = ?", id, studentID, true).
		Update("last_activity", at)
	return res.RowsAffected, wrap("touch session", res.Error)
}

func (r *sessionRepo) Close(dbc dbctx.Context, id, studentID uuid.UUID, at time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Session{}).
		Where("id = ? AND student_id = ? AND is_active = ?", id, studentID, true).
		Updates(map[string]any{"is_active": false, "session_end": at, "last_activity": at})
	return res.RowsAffected, wrap("close session", res.Error)
}

func (r *sessionRepo) ListActive(dbc dbctx.Context) ([]*types.Session, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Session
	if err := t.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Order("session_start DESC").
		Find(&out).Error; err != nil {
		return nil, wrap("list active sessions", err)
	}
	return out, nil
}
