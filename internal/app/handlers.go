package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/smartassist-backend/internal/dashboard"
	httpH "github.com/yungbote/smartassist-backend/internal/http/handlers"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"github.com/yungbote/smartassist-backend/internal/realtime"
	"github.com/yungbote/smartassist-backend/internal/workspace"
)

type Handlers struct {
	Auth      *httpH.AuthHandler
	User      *httpH.UserHandler
	Tutorial  *httpH.TutorialHandler
	Progress  *httpH.ProgressHandler
	Workspace *httpH.WorkspaceHandler
	Session   *httpH.SessionHandler
	Help      *httpH.HelpHandler
	CodeLog   *httpH.CodeLogHandler
	ErrorLog  *httpH.ErrorLogHandler
	Dashboard *httpH.DashboardHandler
	Realtime  *httpH.RealtimeHandler
	Health    *httpH.HealthHandler
}

func wireHandlers(
	log *logger.Logger,
	db *gorm.DB,
	svc Services,
	dispatcher *realtime.Dispatcher,
	workspaces *workspace.Manager,
	refresher *dashboard.Refresher,
) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:      httpH.NewAuthHandler(log, svc.Auth, workspaces),
		User:      httpH.NewUserHandler(svc.Profiles),
		Tutorial:  httpH.NewTutorialHandler(svc.Tutorials),
		Progress:  httpH.NewProgressHandler(svc.Progress),
		Workspace: httpH.NewWorkspaceHandler(workspaces),
		Session:   httpH.NewSessionHandler(svc.Sessions),
		Help:      httpH.NewHelpHandler(svc.Help),
		CodeLog:   httpH.NewCodeLogHandler(svc.Snapshots),
		ErrorLog:  httpH.NewErrorLogHandler(svc.ErrorLogs),
		Dashboard: httpH.NewDashboardHandler(log, refresher),
		Realtime:  httpH.NewRealtimeHandler(log, dispatcher, workspaces),
		Health:    httpH.NewHealthHandler(db),
	}
}
