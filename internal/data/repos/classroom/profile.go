package classroom

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

type ProfileRepo interface {
	Create(dbc dbctx.Context, p *types.Profile) error
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error)
	// List returns profiles oldest first; an empty userType lists everyone.
	List(dbc dbctx.Context, userType string) ([]*types.Profile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) Create(dbc dbctx.Context, p *types.Profile) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return wrap("insert profile", t.WithContext(dbc.Ctx).Create(p).Error)
}

func (r *profileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.Profile
	if err := t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, wrap("get profile", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *profileRepo) List(dbc dbctx.Context, userType string) ([]*types.Profile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.Profile{})
	if userType != "" {
		q = q.Where("user_type = ?", userType)
	}
	var out []*types.Profile
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, wrap("list profiles", err)
	}
	return out, nil
}
