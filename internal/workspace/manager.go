package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/smartassist-backend/internal/observability"
	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"github.com/yungbote/smartassist-backend/internal/services"
)

type Config struct {
	AutoSaveInterval  time.Duration
	HeartbeatInterval time.Duration
}

func DefaultConfig() Config {
	return Config{AutoSaveInterval: 5 * time.Second, HeartbeatInterval: 30 * time.Second}
}

// Manager owns at most one open workspace per student on this node.
type Manager struct {
	log       *logger.Logger
	cfg       Config
	progress  services.ProgressService
	snapshots services.SnapshotService
	sessions  services.SessionService
	metrics   *observability.Metrics

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	byStudent map[uuid.UUID]*Workspace

	// lifecycle serialises Open and Close per student.
	lifecycleMu sync.Mutex
	lifecycle   map[uuid.UUID]*studentLock
}

type studentLock struct {
	mu   sync.Mutex
	refs int
}

func NewManager(
	baseLog *logger.Logger,
	cfg Config,
	progress services.ProgressService,
	snapshots services.SnapshotService,
	sessions services.SessionService,
	metrics *observability.Metrics,
) *Manager {
	def := DefaultConfig()
	if cfg.AutoSaveInterval <= 0 {
		cfg.AutoSaveInterval = def.AutoSaveInterval
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = def.HeartbeatInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		log:       baseLog.With("component", "WorkspaceManager"),
		cfg:       cfg,
		progress:  progress,
		snapshots: snapshots,
		sessions:  sessions,
		metrics:   metrics,
		ctx:       ctx,
		cancel:    cancel,
		byStudent: make(map[uuid.UUID]*Workspace),
		lifecycle: make(map[uuid.UUID]*studentLock),
	}
}

// lockStudent blocks until no other Open or Close for studentID is running.
func (m *Manager) lockStudent(studentID uuid.UUID) (unlock func()) {
	m.lifecycleMu.Lock()
	l := m.lifecycle[studentID]
	if l == nil {
		l = &studentLock{}
		m.lifecycle[studentID] = l
	}
	l.refs++
	m.lifecycleMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.lifecycleMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.lifecycle, studentID)
		}
		m.lifecycleMu.Unlock()
	}
}

// Open initialises progress for the tutorial, opens a fresh session and
// starts the timers. A workspace the student already had here is replaced.
func (m *Manager) Open(ctx context.Context, studentID uuid.UUID, tutorialRef string) (*Workspace, error) {
	st, err := m.progress.EnsureInitialized(ctx, studentID, tutorialRef)
	if err != nil {
		return nil, err
	}

	unlock := m.lockStudent(studentID)
	defer unlock()

	sess, err := m.sessions.Open(ctx, studentID)
	if err != nil {
		return nil, err
	}

	w := &Workspace{
		log:          m.log.With("student_id", studentID, "session_id", sess.ID),
		cfg:          m.cfg,
		progress:     m.progress,
		snapshots:    m.snapshots,
		sessions:     m.sessions,
		metrics:      m.metrics,
		studentID:    studentID,
		sessionID:    sess.ID,
		tutorialID:   st.Progress.TutorialID,
		tutorialCode: st.TutorialCode,
		step:         st.Progress.CurrentStep,
		totalSteps:   st.TotalSteps,
		onLost:       m.evict,
	}

	m.mu.Lock()
	prev := m.byStudent[studentID]
	m.byStudent[studentID] = w
	m.mu.Unlock()

	if prev != nil {
		// sessions.Open normally ended its row already; Close is then a no-op.
		if err := prev.Close(ctx); err != nil {
			m.log.Warn("Closing superseded workspace failed", "student_id", studentID, "session_id", prev.sessionID, "error", err)
		}
		m.metrics.WorkspaceClosed()
	}
	w.start(m.ctx)
	m.metrics.WorkspaceOpened()
	m.log.Info("Workspace opened", "student_id", studentID, "session_id", sess.ID, "tutorial", st.TutorialCode)
	return w, nil
}

func (m *Manager) Get(studentID uuid.UUID) (*Workspace, error) {
	m.mu.Lock()
	w := m.byStudent[studentID]
	m.mu.Unlock()
	if w == nil {
		return nil, apierr.NotFound("no_open_workspace")
	}
	return w, nil
}

// Close tears down the student's workspace if one is open. Idempotent.
func (m *Manager) Close(ctx context.Context, studentID uuid.UUID) error {
	return m.closeMatching(ctx, studentID, uuid.Nil)
}

// CloseSession closes the student's workspace only if it is still bound to
// sessionID, so a stale stream disconnect cannot end a newer session.
func (m *Manager) CloseSession(ctx context.Context, studentID, sessionID uuid.UUID) error {
	return m.closeMatching(ctx, studentID, sessionID)
}

func (m *Manager) closeMatching(ctx context.Context, studentID, sessionID uuid.UUID) error {
	unlock := m.lockStudent(studentID)
	defer unlock()

	m.mu.Lock()
	w := m.byStudent[studentID]
	if w == nil || (sessionID != uuid.Nil && w.sessionID != sessionID) {
		m.mu.Unlock()
		return nil
	}
	delete(m.byStudent, studentID)
	m.mu.Unlock()

	m.metrics.WorkspaceClosed()
	m.log.Info("Workspace closing", "student_id", studentID, "session_id", w.sessionID)
	return w.Close(ctx)
}

// evict drops a workspace whose session was ended elsewhere.
func (m *Manager) evict(w *Workspace) {
	m.mu.Lock()
	current := m.byStudent[w.studentID] == w
	if current {
		delete(m.byStudent, w.studentID)
	}
	m.mu.Unlock()
	w.stop()
	if current {
		m.metrics.WorkspaceClosed()
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byStudent)
}

// Shutdown closes every workspace, ending their sessions.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	open := make([]*Workspace, 0, len(m.byStudent))
	for _, w := range m.byStudent {
		open = append(open, w)
	}
	m.byStudent = make(map[uuid.UUID]*Workspace)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, w := range open {
		wg.Add(1)
		go func(w *Workspace) {
			defer wg.Done()
			_ = w.Close(ctx)
			m.metrics.WorkspaceClosed()
		}(w)
	}
	wg.Wait()
	m.cancel()
	m.log.Info("Workspaces shut down", "count", len(open))
}
