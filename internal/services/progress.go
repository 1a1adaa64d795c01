package services

import (
	"context"
	"errors"

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

// ProgressState is a student's position plus what a client needs to render it.
type ProgressState struct {
	Progress     *types.Progress `json:"progress"`
	TutorialCode string          `json:"tutorial_code"`
	TotalSteps   int             `json:"total_steps"`
	// Changed is false when the move hit a bound and nothing was written.
	Changed bool `json:"changed"`
}

type ProgressService interface {
	// EnsureInitialized creates the step-0 row for the pair if none exists.
	// Concurrent calls converge on a single row.
	EnsureInitialized(ctx context.Context, studentID uuid.UUID, tutorialRef string) (*ProgressState, error)
	Get(ctx context.Context, studentID uuid.UUID, tutorialRef string) (*ProgressState, error)
	Advance(ctx context.Context, studentID uuid.UUID, tutorialRef string) (*ProgressState, error)
	Retreat(ctx context.Context, studentID uuid.UUID, tutorialRef string) (*ProgressState, error)
}

type progressService struct {
	db        *gorm.DB
	log       *logger.Logger
	progress  repos.ProgressRepo
	tutorials TutorialService
	notify    ChangeNotifier
	metrics   *observability.Metrics
	now       Clock
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	progress repos.ProgressRepo,
	tutorials TutorialService,
	notify ChangeNotifier,
	metrics *observability.Metrics,
) ProgressService {
	return &progressService{
		db:        db,
		log:       baseLog.With("service", "ProgressService"),
		progress:  progress,
		tutorials: tutorials,
		notify:    notifierOrNop(notify),
		metrics:   metrics,
		now:       SystemClock,
	}
}

func (s *progressService) EnsureInitialized(ctx context.Context, studentID uuid.UUID, tutorialRef string) (*ProgressState, error) {
	dbc := dbctx.New(ctx)
	tut, err := s.tutorials.Resolve(dbc, tutorialRef)
	if err != nil {
		return nil, err
	}
	inserted, err := s.insertIfAbsent(dbc, studentID, tut.ID)
	if err != nil {
		return nil, err
	}
	p, err := s.progress.Get(dbc, studentID, tut.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.Persistence("ensure progress", errors.New("row missing after upsert"))
	}
	if inserted {
		s.notify.Changed(ctx, realtime.TableProgress, realtime.OpInsert, studentID, p.ID)
	}
	return &ProgressState{Progress: p, TutorialCode: tut.TutorialID, TotalSteps: tut.StepCount(), Changed: inserted}, nil
}

func (s *progressService) Get(ctx context.Context, studentID uuid.UUID, tutorialRef string) (*ProgressState, error) {
	dbc := dbctx.New(ctx)
	tut, err := s.tutorials.Resolve(dbc, tutorialRef)
	if err != nil {
		return nil, err
	}
	p, err := s.progress.Get(dbc, studentID, tut.ID)
	if err != nil {
		return nil, err
	}
	// No row yet is a normal empty state.
	return &ProgressState{Progress: p, TutorialCode: tut.TutorialID, TotalSteps: tut.StepCount()}, nil
}

func (s *progressService) Advance(ctx context.Context, studentID uuid.UUID, tutorialRef string) (*ProgressState, error) {
	return s.move(ctx, studentID, tutorialRef, +1)
}

func (s *progressService) Retreat(ctx context.Context, studentID uuid.UUID, tutorialRef string) (*ProgressState, error) {
	return s.move(ctx, studentID, tutorialRef, -1)
}

// move shifts current_step by delta under a row lock. Moving past either
// end of the tutorial is a no-op that returns the unchanged row.
func (s *progressService) move(ctx context.Context, studentID uuid.UUID, tutorialRef string, delta int) (*ProgressState, error) {
	tut, err := s.tutorials.Resolve(dbctx.New(ctx), tutorialRef)
	if err != nil {
		return nil, err
	}
	last := tut.StepCount() - 1

	var (
		out     *types.Progress
		changed bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.insertIfAbsent(dbc, studentID, tut.ID); err != nil {
			return err
		}
		p, err := s.progress.GetForUpdate(dbc, studentID, tut.ID)
		if err != nil {
			return err
		}
		if p == nil {
			return apierr.Persistence("load progress", errors.New("row missing after upsert"))
		}
		out = p

		next := p.CurrentStep + delta
		if delta < 0 && p.CurrentStep > last {
			next = last
		}
		if next < 0 || next > last || next == p.CurrentStep {
			return nil
		}
		if delta > 0 {
			p.MarkCompleted(p.CurrentStep)
		}
		p.CurrentStep = next
		p.UpdatedAt = s.now()
		if err := s.progress.UpdateStep(dbc, p.ID, p.CurrentStep, p.CompletedSteps, p.UpdatedAt); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		s.log.Warn("Progress move failed", "student_id", studentID, "tutorial", tut.TutorialID, "delta", delta, "error", err)
		return nil, err
	}

	direction := "advance"
	if delta < 0 {
		direction = "retreat"
	}
	s.metrics.ProgressMoved(direction, changed)
	if changed {
		s.notify.Changed(ctx, realtime.TableProgress, realtime.OpUpdate, studentID, out.ID)
	}
	return &ProgressState{Progress: out, TutorialCode: tut.TutorialID, TotalSteps: tut.StepCount(), Changed: changed}, nil
}

func (s *progressService) insertIfAbsent(dbc dbctx.Context, studentID, tutorialID uuid.UUID) (bool, error) {
	if studentID == uuid.Nil {
		return false, apierr.AuthRequired()
	}
	now := s.now()
	return s.progress.InsertIfAbsent(dbc, &types.Progress{
		StudentID:   studentID,
		TutorialID:  tutorialID,
		CurrentStep: 0,
		StartedAt:   now,
		UpdatedAt:   now,
	})
}
