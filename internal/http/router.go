package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/yungbote/smartassist-backend/internal/domain"
	httpH "github.com/yungbote/smartassist-backend/internal/http/handlers"
	httpMW "github.com/yungbote/smartassist-backend/internal/http/middleware"
	"github.com/yungbote/smartassist-backend/internal/observability"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler      *httpH.AuthHandler
	UserHandler      *httpH.UserHandler
	TutorialHandler  *httpH.TutorialHandler
	ProgressHandler  *httpH.ProgressHandler
	WorkspaceHandler *httpH.WorkspaceHandler
	SessionHandler   *httpH.SessionHandler
	HelpHandler      *httpH.HelpHandler
	CodeLogHandler   *httpH.CodeLogHandler
	ErrorLogHandler  *httpH.ErrorLogHandler
	DashboardHandler *httpH.DashboardHandler
	RealtimeHandler  *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	httpH.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/signup", cfg.AuthHandler.Signup)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	student := protected.Group("/", httpMW.RequireRole(types.UserTypeStudent))
	teacher := protected.Group("/", httpMW.RequireRole(types.UserTypeTeacher))

	if cfg.AuthHandler != nil {
		protected.POST("/auth/logout", cfg.AuthHandler.Logout)
	}
	if cfg.UserHandler != nil {
		protected.GET("/me", cfg.UserHandler.GetMe)
		teacher.GET("/profiles", cfg.UserHandler.ListProfiles)
	}
	if cfg.TutorialHandler != nil {
		protected.GET("/tutorials", cfg.TutorialHandler.List)
		protected.GET("/tutorials/:id", cfg.TutorialHandler.Get)
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		protected.GET("/stream", cfg.RealtimeHandler.Stream)
	}

	if cfg.HelpHandler != nil {
		protected.GET("/help-requests", cfg.HelpHandler.List)
		protected.POST("/help-requests", cfg.HelpHandler.Create)
		teacher.POST("/help-requests/:id/respond", cfg.HelpHandler.Respond)
	}
	if cfg.CodeLogHandler != nil {
		protected.GET("/code-logs", cfg.CodeLogHandler.List)
		student.POST("/code-logs", cfg.CodeLogHandler.Capture)
	}
	if cfg.ErrorLogHandler != nil {
		protected.POST("/errors", cfg.ErrorLogHandler.Report)
		teacher.GET("/errors", cfg.ErrorLogHandler.List)
		teacher.POST("/errors/:id/resolve", cfg.ErrorLogHandler.Resolve)
	}

	// Student engine
	if cfg.ProgressHandler != nil {
		student.GET("/progress/:tutorialId", cfg.ProgressHandler.Get)
		student.POST("/progress/:tutorialId/init", cfg.ProgressHandler.Init)
		student.POST("/progress/:tutorialId/advance", cfg.ProgressHandler.Advance)
		student.POST("/progress/:tutorialId/retreat", cfg.ProgressHandler.Retreat)
	}
	if cfg.WorkspaceHandler != nil {
		student.POST("/workspace", cfg.WorkspaceHandler.Open)
		student.GET("/workspace", cfg.WorkspaceHandler.Status)
		student.DELETE("/workspace", cfg.WorkspaceHandler.Close)
		student.PUT("/workspace/buffer", cfg.WorkspaceHandler.UpdateBuffer)
		student.POST("/workspace/submit", cfg.WorkspaceHandler.Submit)
		student.POST("/workspace/advance", cfg.WorkspaceHandler.Advance)
		student.POST("/workspace/retreat", cfg.WorkspaceHandler.Retreat)
	}
	if cfg.SessionHandler != nil {
		student.POST("/sessions/heartbeat", cfg.SessionHandler.Heartbeat)
		teacher.GET("/sessions/active", cfg.SessionHandler.ListActive)
	}

	// Teacher dashboard
	if cfg.DashboardHandler != nil {
		teacher.GET("/dashboard", cfg.DashboardHandler.Get)
		teacher.POST("/dashboard/refresh", cfg.DashboardHandler.Refresh)
	}

	return r
}
