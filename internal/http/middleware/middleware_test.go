package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
	"github.com/yungbote/smartassist-backend/internal/platform/ctxutil"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"github.com/yungbote/smartassist-backend/internal/services"
)

type stubAuth struct {
	services.AuthService
	rd *ctxutil.RequestData
}

func (s stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	if token != "good" {
		return ctx, apierr.AuthRequired()
	}
	return ctxutil.WithRequestData(ctx, s.rd), nil
}

func newEngine(rd *ctxutil.RequestData, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), stubAuth{rd: rd})
	r := gin.New()
	r.Use(AttachTraceContext())
	g := r.Group("/", am.RequireAuth())
	if role != "" {
		g.Use(RequireRole(role))
	}
	g.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRequireAuth(t *testing.T) {
	rd := &ctxutil.RequestData{UserID: uuid.New(), UserType: "student"}
	r := newEngine(rd, "")

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "missing", path: "/x", want: http.StatusUnauthorized},
		{name: "bad bearer", path: "/x", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "bearer", path: "/x", header: "Bearer good", want: http.StatusNoContent},
		{name: "query token", path: "/x?token=good", want: http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
			}
			if rec.Header().Get(headerRequestID) == "" {
				t.Fatalf("missing request id header")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	rd := &ctxutil.RequestData{UserID: uuid.New(), UserType: "student"}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	newEngine(rd, "teacher").ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	newEngine(rd, "student").ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
