package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/smartassist-backend/internal/dashboard"
	"github.com/yungbote/smartassist-backend/internal/data/repos/testutil"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/http/response"
	"github.com/yungbote/smartassist-backend/internal/services"
	"github.com/yungbote/smartassist-backend/internal/workspace"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	cfg := Config{
		JWTSecretKey:   "test-secret",
		AccessTokenTTL: time.Hour,
		Workspace:      workspace.Config{AutoSaveInterval: time.Hour, HeartbeatInterval: time.Hour},
		Dashboard:      dashboard.RefresherConfig{Debounce: 10 * time.Millisecond},
		SeedTutorials:  true,
	}
	a, err := NewWithDB(ctx, testutil.Logger(t), cfg, testutil.DB(t))
	require.NoError(t, err)
	require.NoError(t, a.Start(ctx))
	t.Cleanup(a.Close)
	return a
}

func call(t *testing.T, a *App, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type authResp struct {
	Profile     types.Profile `json:"profile"`
	AccessToken string        `json:"access_token"`
}

func signup(t *testing.T, a *App, name, userType string) authResp {
	t.Helper()
	rec := call(t, a, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":     name + "-" + uuid.NewString()[:8] + "@example.com",
		"password":  "secret123",
		"name":      name,
		"user_type": userType,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authResp](t, rec)
}

func TestAuthAndRoleGates(t *testing.T) {
	a := newTestApp(t)
	student := signup(t, a, "ana", types.UserTypeStudent)

	rec := call(t, a, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, a, http.MethodGet, "/api/me", student.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[struct {
		Profile types.Profile `json:"profile"`
	}](t, rec)
	assert.Equal(t, "ana", me.Profile.Name)

	rec = call(t, a, http.MethodGet, "/api/dashboard", student.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, a, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email": "x@example.com", "password": "secret123", "name": "   ", "user_type": "student",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, a, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProgressHelpAndDashboardFlow(t *testing.T) {
	a := newTestApp(t)
	student := signup(t, a, "ben", types.UserTypeStudent)
	teacher := signup(t, a, "mrs-k", types.UserTypeTeacher)

	rec := call(t, a, http.MethodPost, "/api/progress/TUT001/init", student.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st := decode[services.ProgressState](t, rec)
	assert.Equal(t, 0, st.Progress.CurrentStep)
	assert.Equal(t, 4, st.TotalSteps)

	for i := 0; i < 4; i++ {
		rec = call(t, a, http.MethodPost, "/api/progress/TUT001/advance", student.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	st = decode[services.ProgressState](t, rec)
	assert.Equal(t, 3, st.Progress.CurrentStep)
	assert.False(t, st.Changed)

	rec = call(t, a, http.MethodPost, "/api/progress/NOPE/init", student.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, a, http.MethodPost, "/api/help-requests", student.AccessToken, gin.H{"message": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_message", decode[response.ErrorEnvelope](t, rec).Error.Code)

	rec = call(t, a, http.MethodPost, "/api/help-requests", student.AccessToken, gin.H{"message": "stuck on loops"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[struct {
		HelpRequest types.HelpRequest `json:"help_request"`
	}](t, rec).HelpRequest
	respondPath := "/api/help-requests/" + created.ID.String() + "/respond"

	rec = call(t, a, http.MethodPost, respondPath, student.AccessToken, gin.H{"response": "self-help"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, a, http.MethodPost, respondPath, teacher.AccessToken, gin.H{"response": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, a, http.MethodPost, respondPath, teacher.AccessToken, gin.H{"response": "check the loop bound"})
	require.Equal(t, http.StatusOK, rec.Code)
	responded := decode[struct {
		HelpRequest types.HelpRequest `json:"help_request"`
	}](t, rec).HelpRequest
	assert.Equal(t, types.HelpStatusResponded, responded.Status)
	require.NotNil(t, responded.TeacherID)
	assert.Equal(t, teacher.Profile.UserID, *responded.TeacherID)

	rec = call(t, a, http.MethodGet, "/api/help-requests", student.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[struct {
		HelpRequests []types.HelpRequest `json:"help_requests"`
	}](t, rec).HelpRequests
	require.Len(t, mine, 1)

	rec = call(t, a, http.MethodPost, "/api/dashboard/refresh", teacher.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[dashboard.View](t, rec)
	var found bool
	for _, row := range view.Students {
		if row.Student.UserID != student.Profile.UserID {
			continue
		}
		found = true
		require.NotNil(t, row.Progress)
		assert.Equal(t, 3, row.Progress.CurrentStep)
		require.NotNil(t, row.Tutorial)
		assert.Equal(t, "TUT001", row.Tutorial.TutorialID)
		assert.Len(t, row.HelpRequests, 1)
	}
	assert.True(t, found, "student missing from dashboard")

	rec = call(t, a, http.MethodGet, "/api/dashboard?tutorial_id=TUT002&step=all", teacher.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, row := range decode[dashboard.View](t, rec).Students {
		assert.NotEqual(t, student.Profile.UserID, row.Student.UserID)
	}
}

func TestWorkspaceOverHTTP(t *testing.T) {
	a := newTestApp(t)
	student := signup(t, a, "cy", types.UserTypeStudent)
	teacher := signup(t, a, "mr-t", types.UserTypeTeacher)

	rec := call(t, a, http.MethodPost, "/api/workspace", student.AccessToken, gin.H{"tutorial_id": "TUT002"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	status := decode[workspace.Status](t, rec)
	assert.Equal(t, "TUT002", status.TutorialCode)
	assert.NotEqual(t, uuid.Nil, status.SessionID)

	rec = call(t, a, http.MethodPost, "/api/workspace/submit", student.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, a, http.MethodPut, "/api/workspace/buffer", student.AccessToken, gin.H{"code": "for (let i = 0; i < 3; i++) {}"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, a, http.MethodPost, "/api/workspace/submit", student.AccessToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, a, http.MethodPost, "/api/workspace/advance", student.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[workspace.Status](t, rec).CurrentStep)

	rec = call(t, a, http.MethodGet, "/api/code-logs?student_id="+student.Profile.UserID.String(), teacher.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[struct {
		CodeLogs []types.CodeLog `json:"code_logs"`
	}](t, rec).CodeLogs
	require.Len(t, logs, 1)
	assert.True(t, logs[0].IsSubmission)

	rec = call(t, a, http.MethodPost, "/api/auth/logout", student.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, a, http.MethodGet, "/api/workspace", student.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	sess, err := a.Services.Sessions.ListActive(context.Background())
	require.NoError(t, err)
	for _, s := range sess {
		assert.NotEqual(t, status.SessionID, s.ID)
	}
}

func TestErrorReportsAreAcceptedAndListed(t *testing.T) {
	a := newTestApp(t)
	student := signup(t, a, "dee", types.UserTypeStudent)
	teacher := signup(t, a, "ms-j", types.UserTypeTeacher)

	rec := call(t, a, http.MethodPost, "/api/errors", student.AccessToken, gin.H{
		"error_message": "ReferenceError: x is not defined",
		"context":       gin.H{"page": "student"},
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = call(t, a, http.MethodGet, "/api/errors?student_id="+student.Profile.UserID.String(), teacher.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[struct {
		ErrorLogs []types.ErrorLog `json:"error_logs"`
	}](t, rec).ErrorLogs
	require.Len(t, rows, 1)

	rec = call(t, a, http.MethodPost, "/api/errors/"+rows[0].ID.String()+"/resolve", teacher.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, a, http.MethodPost, "/api/errors/"+uuid.NewString()+"/resolve", teacher.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
