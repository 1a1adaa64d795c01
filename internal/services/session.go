package services

import (
	"context"

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

type SessionService interface {
	// Open starts a new active session and ends any other active session of
	// the student in the same transaction.
	Open(ctx context.Context, studentID uuid.UUID) (*types.Session, error)
	// Heartbeat refreshes last_activity. alive is false when the session is
	// no longer active (closed or superseded).
	Heartbeat(ctx context.Context, studentID, sessionID uuid.UUID) (alive bool, err error)
	// Close ends the session. Closing an already closed session is a no-op.
	Close(ctx context.Context, studentID, sessionID uuid.UUID) error
	ListActive(ctx context.Context) ([]*types.Session, error)
}

type sessionService struct {
	db       *gorm.DB
	log      *logger.Logger
	sessions repos.SessionRepo
	notify   ChangeNotifier
	metrics  *observability.Metrics
	now      Clock
}

func NewSessionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessions repos.SessionRepo,
	notify ChangeNotifier,
	metrics *observability.Metrics,
) SessionService {
	return &sessionService{
		db:       db,
		log:      baseLog.With("service", "SessionService"),
		sessions: sessions,
		notify:   notifierOrNop(notify),
		metrics:  metrics,
		now:      SystemClock,
	}
}

func (s *sessionService) Open(ctx context.Context, studentID uuid.UUID) (*types.Session, error) {
	if studentID == uuid.Nil {
		return nil, apierr.AuthRequired()
	}
	now := s.now()
	sess := &types.Session{
		ID:           uuid.New(),
		StudentID:    studentID,
		SessionStart: now,
		IsActive:     true,
		LastActivity: now,
		CreatedAt:    now,
	}
	var superseded int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		n, err := s.sessions.CloseOthers(dbc, studentID, sess.ID, now)
		if err != nil {
			return err
		}
		superseded = n
		return s.sessions.Create(dbc, sess)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SessionTransition("opened")
	if superseded > 0 {
		s.metrics.SessionTransition("superseded")
		s.log.Info("Superseded active sessions", "student_id", studentID, "count", superseded)
	}
	s.notify.Changed(ctx, realtime.TableSessions, realtime.OpInsert, studentID, sess.ID)
	return sess, nil
}

func (s *sessionService) Heartbeat(ctx context.Context, studentID, sessionID uuid.UUID) (bool, error) {
	n, err := s.sessions.Touch(dbctx.New(ctx), sessionID, studentID, s.now())
	if err != nil {
		return false, err
	}
	if n == 0 {
		s.metrics.SessionTransition("heartbeat_lost")
		return false, nil
	}
	s.notify.Changed(ctx, realtime.TableSessions, realtime.OpUpdate, studentID, sessionID)
	return true, nil
}

func (s *sessionService) Close(ctx context.Context, studentID, sessionID uuid.UUID) error {
	n, err := s.sessions.Close(dbctx.New(ctx), sessionID, studentID, s.now())
	if err != nil {
		s.metrics.SessionTransition("close_failed")
		return err
	}
	if n == 0 {
		return nil
	}
	s.metrics.SessionTransition("closed")
	s.notify.Changed(ctx, realtime.TableSessions, realtime.OpUpdate, studentID, sessionID)
	return nil
}

func (s *sessionService) ListActive(ctx context.Context) ([]*types.Session, error) {
	return s.sessions.ListActive(dbctx.New(ctx))
}
