package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/smartassist-backend/internal/data/repos"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/observability"
	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"github.com/yungbote/smartassist-backend/internal/realtime"
)

type CaptureInput struct {
	StudentID    uuid.UUID
	Code         string
	IsSubmission bool
	TutorialID   *uuid.UUID
	StepNumber   *int
	SessionID    *uuid.UUID
}

type SnapshotService interface {
	// Capture appends one snapshot row. Every successful call adds a row.
	Capture(ctx context.Context, in CaptureInput) (*types.CodeLog, error)
	List(ctx context.Context, studentID uuid.UUID, limit int) ([]*types.CodeLog, error)
	Latest(ctx context.Context) ([]*types.CodeLog, error)
}

type snapshotService struct {
	db       *gorm.DB
	log      *logger.Logger
	codeLogs repos.CodeLogRepo
	notify   ChangeNotifier
	metrics  *observability.Metrics
	now      Clock
}

func NewSnapshotService(
	db *gorm.DB,
	baseLog *logger.Logger,
	codeLogs repos.CodeLogRepo,
	notify ChangeNotifier,
	metrics *observability.Metrics,
) SnapshotService {
	return &snapshotService{
		db:       db,
		log:      baseLog.With("service", "SnapshotService"),
		codeLogs: codeLogs,
		notify:   notifierOrNop(notify),
		metrics:  metrics,
		now:      SystemClock,
	}
}

func (s *snapshotService) Capture(ctx context.Context, in CaptureInput) (*types.CodeLog, error) {
	if in.StudentID == uuid.Nil {
		return nil, apierr.AuthRequired()
	}
	if strings.TrimSpace(in.Code) == "" {
		return nil, apierr.Validation("empty_code", "code is empty")
	}
	row := &types.CodeLog{
		ID:           uuid.New(),
		StudentID:    in.StudentID,
		Code:         in.Code,
		IsSubmission: in.IsSubmission,
		SessionID:    in.SessionID,
		TutorialID:   in.TutorialID,
		StepNumber:   in.StepNumber,
		Timestamp:    s.now(),
	}
	if err := s.codeLogs.Create(dbctx.New(ctx), row); err != nil {
		return nil, err
	}

	kind := "autosave"
	if in.IsSubmission {
		kind = "submission"
	}
	s.metrics.SnapshotCaptured(kind)
	s.notify.Changed(ctx, realtime.TableCodeLogs, realtime.OpInsert, in.StudentID, row.ID)
	return row, nil
}

func (s *snapshotService) List(ctx context.Context, studentID uuid.UUID, limit int) ([]*types.CodeLog, error) {
	return s.codeLogs.List(dbctx.New(ctx), studentID, limit)
}

func (s *snapshotService) Latest(ctx context.Context) ([]*types.CodeLog, error) {
	return s.codeLogs.LatestPerStudent(dbctx.New(ctx))
}
