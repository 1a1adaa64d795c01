package app

import (
	apphttp "github.com/yungbote/smartassist-backend/internal/http"
	httpMW "github.com/yungbote/smartassist-backend/internal/http/middleware"
	"github.com/yungbote/smartassist-backend/internal/observability"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, h Handlers, svc Services, metrics *observability.Metrics) *apphttp.Server {
	var serviceName string
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:         log,
		Metrics:     metrics,
		ServiceName: serviceName,
		CORSOrigins: cfg.CORSOrigins,

		AuthMiddleware: httpMW.NewAuthMiddleware(log, svc.Auth),

		AuthHandler:      h.Auth,
		UserHandler:      h.User,
		TutorialHandler:  h.Tutorial,
		ProgressHandler:  h.Progress,
		WorkspaceHandler: h.Workspace,
		SessionHandler:   h.Session,
		HelpHandler:      h.Help,
		CodeLogHandler:   h.CodeLog,
		ErrorLogHandler:  h.ErrorLog,
		DashboardHandler: h.Dashboard,
		RealtimeHandler:  h.Realtime,
		HealthHandler:    h.Health,
	})
}
