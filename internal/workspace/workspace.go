package workspace

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/observability"
	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"github.com/yungbote/smartassist-backend/internal/services"
)

const closeTimeout = 5 * time.Second

type Status struct {
	StudentID    uuid.UUID  `json:"student_id"`
	SessionID    uuid.UUID  `json:"session_id"`
	TutorialID   uuid.UUID  `json:"tutorial_id"`
	TutorialCode string     `json:"tutorial_code"`
	CurrentStep  int        `json:"current_step"`
	TotalSteps   int        `json:"total_steps"`
	AutoSaving   bool       `json:"auto_saving"`
	LastSavedAt  *time.Time `json:"last_saved_at,omitempty"`
	Closed       bool       `json:"closed"`
}

// Workspace is one student's open editing session: the live buffer, the
// cached progress position and the auto-save and heartbeat timers.
type Workspace struct {
	log       *logger.Logger
	cfg       Config
	progress  services.ProgressService
	snapshots services.SnapshotService
	sessions  services.SessionService
	metrics   *observability.Metrics

	studentID    uuid.UUID
	sessionID    uuid.UUID
	tutorialID   uuid.UUID
	tutorialCode string

	buf    Buffer
	saving atomic.Bool

	mu           sync.Mutex
	step         int
	totalSteps   int
	savedVersion uint64
	lastSavedAt  *time.Time
	closed       bool

	cancel    context.CancelFunc
	done      chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
	closeErr  error
	onLost    func(*Workspace)
}

func (w *Workspace) StudentID() uuid.UUID { return w.studentID }
func (w *Workspace) SessionID() uuid.UUID { return w.sessionID }

func (w *Workspace) start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx)
}

func (w *Workspace) run(ctx context.Context) {
	autosave := time.NewTicker(w.cfg.AutoSaveInterval)
	heartbeat := time.NewTicker(w.cfg.HeartbeatInterval)
	lost := false
	defer func() {
		autosave.Stop()
		heartbeat.Stop()
		close(w.done)
		if lost && w.onLost != nil {
			go w.onLost(w)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-autosave.C:
			w.autoSave(ctx)
		case <-heartbeat.C:
			if !w.heartbeat(ctx) {
				lost = true
				return
			}
		}
	}
}

// autoSave persists the buffer as it is at fire time. Empty and unchanged
// buffers are skipped; failures are logged and swallowed.
func (w *Workspace) autoSave(ctx context.Context) {
	code, version := w.buf.Snapshot()
	if strings.TrimSpace(code) == "" {
		return
	}
	w.mu.Lock()
	if version == w.savedVersion {
		w.mu.Unlock()
		return
	}
	step := w.step
	w.mu.Unlock()

	w.saving.Store(true)
	defer w.saving.Store(false)

	ctx, cancel := context.WithTimeout(ctx, w.cfg.AutoSaveInterval)
	defer cancel()
	row, err := w.snapshots.Capture(ctx, w.captureInput(code, false, step))
	if err != nil {
		w.metrics.AutoSaveFailed()
		w.log.Warn("Auto-save failed", "student_id", w.studentID, "error", err)
		return
	}
	w.markSaved(version, row.Timestamp)
}

func (w *Workspace) heartbeat(ctx context.Context) bool {
	alive, err := w.sessions.Heartbeat(ctx, w.studentID, w.sessionID)
	if err != nil {
		// A failed write is not proof the session ended; try again next tick.
		w.log.Warn("Session heartbeat failed", "session_id", w.sessionID, "error", err)
		return true
	}
	if !alive {
		w.log.Info("Session no longer active; stopping workspace", "session_id", w.sessionID)
	}
	return alive
}

func (w *Workspace) captureInput(code string, submission bool, step int) services.CaptureInput {
	tid, sid := w.tutorialID, w.sessionID
	return services.CaptureInput{
		StudentID:    w.studentID,
		Code:         code,
		IsSubmission: submission,
		TutorialID:   &tid,
		StepNumber:   &step,
		SessionID:    &sid,
	}
}

func (w *Workspace) markSaved(version uint64, at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if version > w.savedVersion {
		w.savedVersion = version
	}
	w.lastSavedAt = &at
}

// UpdateBuffer replaces the editor contents. It never touches storage.
func (w *Workspace) UpdateBuffer(code string) {
	w.buf.Set(code)
}

// Submit captures the current buffer as a submission. Unlike auto-save an
// empty buffer is an error.
func (w *Workspace) Submit(ctx context.Context) (*types.CodeLog, error) {
	if err := w.ensureOpen(); err != nil {
		return nil, err
	}
	code, version := w.buf.Snapshot()
	w.mu.Lock()
	step := w.step
	w.mu.Unlock()

	row, err := w.snapshots.Capture(ctx, w.captureInput(code, true, step))
	if err != nil {
		return nil, err
	}
	w.markSaved(version, row.Timestamp)
	return row, nil
}

func (w *Workspace) Advance(ctx context.Context) (Status, error) {
	return w.move(ctx, w.progress.Advance)
}

func (w *Workspace) Retreat(ctx context.Context) (Status, error) {
	return w.move(ctx, w.progress.Retreat)
}

// move updates the cached step only once storage has acknowledged it.
func (w *Workspace) move(ctx context.Context, op func(context.Context, uuid.UUID, string) (*services.ProgressState, error)) (Status, error) {
	if err := w.ensureOpen(); err != nil {
		return Status{}, err
	}
	st, err := op(ctx, w.studentID, w.tutorialID.String())
	if err != nil {
		return w.Status(), err
	}
	w.mu.Lock()
	w.step = st.Progress.CurrentStep
	w.totalSteps = st.TotalSteps
	w.mu.Unlock()
	return w.Status(), nil
}

func (w *Workspace) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Status{
		StudentID:    w.studentID,
		SessionID:    w.sessionID,
		TutorialID:   w.tutorialID,
		TutorialCode: w.tutorialCode,
		CurrentStep:  w.step,
		TotalSteps:   w.totalSteps,
		AutoSaving:   w.saving.Load(),
		LastSavedAt:  w.lastSavedAt,
		Closed:       w.closed,
	}
}

func (w *Workspace) ensureOpen() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return apierr.NotFound("workspace_closed")
	}
	return nil
}

// stop halts the timers and waits for an in-flight tick to finish. It must
// not be called from the timer goroutine.
func (w *Workspace) stop() {
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.done
		}
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
	})
}

// Close stops the timers and ends the session. The session write runs
// detached from ctx so a cancelled request still closes it.
func (w *Workspace) Close(ctx context.Context) error {
	w.closeOnce.Do(func() {
		w.stop()
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if err := w.sessions.Close(cctx, w.studentID, w.sessionID); err != nil {
			w.log.Error("Session close failed", "session_id", w.sessionID, "student_id", w.studentID, "error", err)
			w.closeErr = err
		}
	})
	return w.closeErr
}
