package services

import (
	"context"
	"strings"
	"time"

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

type RespondInput struct {
	TeacherID uuid.UUID
	RequestID uuid.UUID
	Response  string
	// ExpectedUpdatedAt, when set, turns the write into a compare-and-set
	// against the row's updated_at.
	ExpectedUpdatedAt *time.Time
}

type HelpService interface {
	Create(ctx context.Context, studentID uuid.UUID, message string) (*types.HelpRequest, error)
	// Respond records a teacher's answer. Without a precondition a second
	// response overwrites the first.
	Respond(ctx context.Context, in RespondInput) (*types.HelpRequest, error)
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.HelpRequest, error)
	ListAll(ctx context.Context, status string) ([]*types.HelpRequest, error)
}

type helpService struct {
	db       *gorm.DB
	log      *logger.Logger
	requests repos.HelpRequestRepo
	notify   ChangeNotifier
	metrics  *observability.Metrics
	now      Clock
}

func NewHelpService(
	db *gorm.DB,
	baseLog *logger.Logger,
	requests repos.HelpRequestRepo,
	notify ChangeNotifier,
	metrics *observability.Metrics,
) HelpService {
	return &helpService{
		db:       db,
		log:      baseLog.With("service", "HelpService"),
		requests: requests,
		notify:   notifierOrNop(notify),
		metrics:  metrics,
		now:      SystemClock,
	}
}

func (s *helpService) Create(ctx context.Context, studentID uuid.UUID, message string) (*types.HelpRequest, error) {
	if studentID == uuid.Nil {
		return nil, apierr.AuthRequired()
	}
	// Whitespace-only text is rejected; anything else is stored as typed.
	if strings.TrimSpace(message) == "" {
		return nil, apierr.Validation("empty_message", "message is required")
	}
	now := s.now()
	row := &types.HelpRequest{
		ID:        uuid.New(),
		StudentID: studentID,
		Message:   message,
		Status:    types.HelpStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.requests.Create(dbctx.New(ctx), row); err != nil {
		return nil, err
	}
	s.metrics.HelpRequestTransition(types.HelpStatusPending)
	s.notify.Changed(ctx, realtime.TableHelpRequests, realtime.OpInsert, studentID, row.ID)
	return row, nil
}

func (s *helpService) Respond(ctx context.Context, in RespondInput) (*types.HelpRequest, error) {
	if in.TeacherID == uuid.Nil {
		return nil, apierr.AuthRequired()
	}
	response := in.Response
	if strings.TrimSpace(response) == "" {
		return nil, apierr.Validation("empty_response", "response is required")
	}

	var out *types.HelpRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.requests.GetForUpdate(dbc, in.RequestID)
		if err != nil {
			return err
		}
		if row == nil {
			return apierr.NotFound("help_request_not_found")
		}
		if in.ExpectedUpdatedAt != nil && !row.UpdatedAt.Equal(*in.ExpectedUpdatedAt) {
			return apierr.Conflict("stale_help_request", "help request changed since it was read")
		}
		at := s.now()
		if _, err := s.requests.Respond(dbc, row.ID, in.TeacherID, response, at); err != nil {
			return err
		}
		if row.Status == types.HelpStatusResponded {
			s.log.Info("Overwriting previous help response", "request_id", row.ID, "teacher_id", in.TeacherID)
		}
		row.Response = &response
		row.TeacherID = &in.TeacherID
		row.Status = types.HelpStatusResponded
		row.RespondedAt = &at
		row.UpdatedAt = at
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.HelpRequestTransition(types.HelpStatusResponded)
	s.notify.Changed(ctx, realtime.TableHelpRequests, realtime.OpUpdate, out.StudentID, out.ID)
	return out, nil
}

func (s *helpService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.HelpRequest, error) {
	return s.requests.ListByStudent(dbctx.New(ctx), studentID)
}

func (s *helpService) ListAll(ctx context.Context, status string) ([]*types.HelpRequest, error) {
	return s.requests.List(dbctx.New(ctx), status)
}
