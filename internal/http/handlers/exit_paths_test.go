package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/smartassist-backend/internal/data/repos"
	"github.com/yungbote/smartassist-backend/internal/data/repos/testutil"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
	"github.com/yungbote/smartassist-backend/internal/platform/ctxutil"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"github.com/yungbote/smartassist-backend/internal/realtime"
	"github.com/yungbote/smartassist-backend/internal/services"
	"github.com/yungbote/smartassist-backend/internal/workspace"
)

type failingClose struct {
	services.SessionService
}

func (failingClose) Close(context.Context, uuid.UUID, uuid.UUID) error {
	return apierr.Persistence("close session", errors.New("connection reset"))
}

type exitEnv struct {
	set      repos.Set
	mgr      *workspace.Manager
	student  *types.Profile
	tutorial *types.Tutorial
}

func newExitEnv(t *testing.T, wrap func(services.SessionService) services.SessionService) *exitEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)

	tutorials := services.NewTutorialService(db, log, set.Tutorials)
	progress := services.NewProgressService(db, log, set.Progress, tutorials, nil, nil)
	snapshots := services.NewSnapshotService(db, log, set.CodeLogs, nil, nil)
	var sessions services.SessionService = services.NewSessionService(db, log, set.Sessions, nil, nil)
	if wrap != nil {
		sessions = wrap(sessions)
	}
	cfg := workspace.Config{AutoSaveInterval: time.Hour, HeartbeatInterval: time.Hour}
	mgr := workspace.NewManager(log, cfg, progress, snapshots, sessions, nil)
	t.Cleanup(func() { mgr.Shutdown(context.Background()) })

	return &exitEnv{
		set:      set,
		mgr:      mgr,
		student:  testutil.SeedProfile(t, ctx, db, "exit-student", types.UserTypeStudent),
		tutorial: testutil.SeedTutorial(t, ctx, db, "EXIT", 3),
	}
}

func (e *exitEnv) asStudent(ctx context.Context) context.Context {
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: e.student.UserID, UserType: types.UserTypeStudent})
}

func TestStreamEndClosesBoundWorkspace(t *testing.T) {
	env := newExitEnv(t, nil)
	w, err := env.mgr.Open(context.Background(), env.student.UserID, env.tutorial.TutorialID)
	require.NoError(t, err)

	dispatcher := realtime.NewDispatcher(logger.Nop(), nil)
	h := NewRealtimeHandler(logger.Nop(), dispatcher, env.mgr)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	reqCtx, cancel := context.WithCancel(env.asStudent(context.Background()))
	defer cancel()
	c.Request = httptest.NewRequest(http.MethodGet, "/api/stream?session_id="+w.SessionID().String(), nil).WithContext(reqCtx)

	done := make(chan struct{})
	go func() {
		h.Stream(c)
		close(done)
	}()
	require.Eventually(t, func() bool { return dispatcher.Len() == 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not return after the client went away")
	}

	assert.Equal(t, 0, dispatcher.Len())
	sess, err := env.set.Sessions.GetByID(dbctx.Context{Ctx: context.Background()}, w.SessionID())
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.False(t, sess.IsActive)
	assert.NotNil(t, sess.SessionEnd)
	_, err = env.mgr.Get(env.student.UserID)
	assert.True(t, errors.Is(err, apierr.ErrNotFound))
}

func TestStaleStreamEndLeavesNewerWorkspaceOpen(t *testing.T) {
	env := newExitEnv(t, nil)
	old, err := env.mgr.Open(context.Background(), env.student.UserID, env.tutorial.TutorialID)
	require.NoError(t, err)
	current, err := env.mgr.Open(context.Background(), env.student.UserID, env.tutorial.TutorialID)
	require.NoError(t, err)

	dispatcher := realtime.NewDispatcher(logger.Nop(), nil)
	h := NewRealtimeHandler(logger.Nop(), dispatcher, env.mgr)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	reqCtx, cancel := context.WithCancel(env.asStudent(context.Background()))
	c.Request = httptest.NewRequest(http.MethodGet, "/api/stream?session_id="+old.SessionID().String(), nil).WithContext(reqCtx)
	cancel()
	h.Stream(c)

	got, err := env.mgr.Get(env.student.UserID)
	require.NoError(t, err)
	assert.Equal(t, current.SessionID(), got.SessionID())
}

func TestLogoutSucceedsWhenSessionCloseFails(t *testing.T) {
	env := newExitEnv(t, func(s services.SessionService) services.SessionService { return failingClose{s} })
	_, err := env.mgr.Open(context.Background(), env.student.UserID, env.tutorial.TutorialID)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.WarnLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	h := NewAuthHandler(log, nil, env.mgr)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil).WithContext(env.asStudent(context.Background()))
	h.Logout(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	warned := logs.FilterMessage("Session close on logout failed")
	require.Equal(t, 1, warned.Len())
	assert.Equal(t, zapcore.WarnLevel, warned.All()[0].Level)

	// The workspace is gone even though its session row could not be ended.
	_, err = env.mgr.Get(env.student.UserID)
	assert.True(t, errors.Is(err, apierr.ErrNotFound))
}
