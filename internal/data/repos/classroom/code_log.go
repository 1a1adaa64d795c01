package classroom

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

const DefaultCodeLogLimit = 50

type CodeLogRepo interface {
	Create(dbc dbctx.Context, row *types.CodeLog) error
	// List returns snapshots newest first, optionally for a single student.
	List(dbc dbctx.Context, studentID uuid.UUID, limit int) ([]*types.CodeLog, error)
	// LatestPerStudent returns the max-timestamp snapshot of every student
	// that has one.
	LatestPerStudent(dbc dbctx.Context) ([]*types.CodeLog, error)
}

type codeLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCodeLogRepo(db *gorm.DB, baseLog *logger.Logger) CodeLogRepo {
	return &codeLogRepo{db: db, log: baseLog.With("repo", "CodeLogRepo")}
}

func (r *codeLogRepo) Create(dbc dbctx.Context, row *types.CodeLog) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return wrap("insert code log", t.WithContext(dbc.Ctx).Create(row).Error)
}

func (r *codeLogRepo) List(dbc dbctx.Context, studentID uuid.UUID, limit int) ([]*types.CodeLog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = DefaultCodeLogLimit
	}
	q := t.WithContext(dbc.Ctx).Model(&types.CodeLog{})
	if studentID != uuid.Nil {
		q = q.Where("student_id = ?", studentID)
	}
	var out []*types.CodeLog
	if err := q.Order(`"timestamp" DESC`).Limit(limit).Find(&out).Error; err != nil {
		return nil, wrap("list code logs", err)
	}
	return out, nil
}

func (r *codeLogRepo) LatestPerStudent(dbc dbctx.Context) ([]*types.CodeLog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx)
	latest := q.Model(&types.CodeLog{}).
		Select(`student_id, MAX("timestamp") AS max_ts`).
		Group("student_id")

	var rows []*types.CodeLog
	if err := q.Table("code_logs AS c").
		Select("c.*").
		Joins(`JOIN (?) AS m ON m.student_id = c.student_id AND m.max_ts = c."timestamp"`, latest).
		Order(`c."timestamp" DESC, c.id ASC`).
		Find(&rows).Error; err != nil {
		return nil, wrap("latest code logs", err)
	}

	// Two snapshots can share a timestamp; keep one per student.
	seen := make(map[uuid.UUID]bool, len(rows))
	out := rows[:0]
	for _, row := range rows {
		if seen[row.StudentID] {
			continue
		}
		seen[row.StudentID] = true
		out = append(out, row)
	}
	return out, nil
}
