package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/smartassist-backend/internal/data/repos"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

type ErrorReport struct {
	StudentID uuid.UUID
	Message   string
	Stack     string
	Context   map[string]any
}

type ErrorLogService interface {
	// Log records a client error. It never fails the caller; problems are
	// only logged.
	Log(ctx context.Context, r ErrorReport)
	List(ctx context.Context, f repos.ErrorLogFilter) ([]*types.ErrorLog, error)
	Resolve(ctx context.Context, id uuid.UUID) error
}

type errorLogService struct {
	db        *gorm.DB
	log       *logger.Logger
	errorLogs repos.ErrorLogRepo
	now       Clock
}

func NewErrorLogService(db *gorm.DB, baseLog *logger.Logger, errorLogs repos.ErrorLogRepo) ErrorLogService {
	return &errorLogService{
		db:        db,
		log:       baseLog.With("service", "ErrorLogService"),
		errorLogs: errorLogs,
		now:       SystemClock,
	}
}

func (s *errorLogService) Log(ctx context.Context, r ErrorReport) {
	msg := strings.TrimSpace(r.Message)
	if r.StudentID == uuid.Nil || msg == "" {
		s.log.Debug("Ignoring empty client error report", "student_id", r.StudentID)
		return
	}
	row := &types.ErrorLog{
		ID:           uuid.New(),
		StudentID:    r.StudentID,
		ErrorMessage: msg,
		CreatedAt:    s.now(),
	}
	if stack := strings.TrimSpace(r.Stack); stack != "" {
		row.ErrorStack = &stack
	}
	if len(r.Context) > 0 {
		raw, err := json.Marshal(r.Context)
		if err != nil {
			s.log.Warn("Dropping unserialisable error context", "error", err)
		} else {
			row.Context = datatypes.JSON(raw)
		}
	}
	if err := s.errorLogs.Create(dbctx.New(ctx), row); err != nil {
		s.log.Error("Failed to record client error", "student_id", r.StudentID, "error", err)
	}
}

func (s *errorLogService) List(ctx context.Context, f repos.ErrorLogFilter) ([]*types.ErrorLog, error) {
	return s.errorLogs.List(dbctx.New(ctx), f)
}

func (s *errorLogService) Resolve(ctx context.Context, id uuid.UUID) error {
	n, err := s.errorLogs.Resolve(dbctx.New(ctx), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apierr.NotFound("error_log_not_found")
	}
	return nil
}
