package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/smartassist-backend/internal/data/repos"
	"github.com/yungbote/smartassist-backend/internal/observability"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"github.com/yungbote/smartassist-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Profiles  services.ProfileService
	Tutorials services.TutorialService
	Progress  services.ProgressService
	Snapshots services.SnapshotService
	Sessions  services.SessionService
	Help      services.HelpService
	ErrorLogs services.ErrorLogService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, rs repos.Set, pub services.ChangePublisher, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	notify := services.NewChangeNotifier(pub, services.SystemClock)
	tutorials := services.NewTutorialService(db, log, rs.Tutorials)
	return Services{
		Auth:      services.NewAuthService(db, log, rs.Users, rs.Profiles, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Profiles:  services.NewProfileService(db, log, rs.Profiles),
		Tutorials: tutorials,
		Progress:  services.NewProgressService(db, log, rs.Progress, tutorials, notify, metrics),
		Snapshots: services.NewSnapshotService(db, log, rs.CodeLogs, notify, metrics),
		Sessions:  services.NewSessionService(db, log, rs.Sessions, notify, metrics),
		Help:      services.NewHelpService(db, log, rs.HelpRequests, notify, metrics),
		ErrorLogs: services.NewErrorLogService(db, log, rs.ErrorLogs),
	}
}
