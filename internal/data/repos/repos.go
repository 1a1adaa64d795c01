package repos

import (
	"github.com/yungbote/smartassist-backend/internal/data/repos/classroom"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = classroom.UserRepo
type ProfileRepo = classroom.ProfileRepo
type TutorialRepo = classroom.TutorialRepo
type ProgressRepo = classroom.ProgressRepo
type CodeLogRepo = classroom.CodeLogRepo
type SessionRepo = classroom.SessionRepo
type HelpRequestRepo = classroom.HelpRequestRepo
type ErrorLogRepo = classroom.ErrorLogRepo

type ErrorLogFilter = classroom.ErrorLogFilter

const DefaultCodeLogLimit = classroom.DefaultCodeLogLimit

var IsUniqueViolation = classroom.IsUniqueViolation

// Set bundles every repo so wiring code passes one value around.
type Set struct {
	Users        UserRepo
	Profiles     ProfileRepo
	Tutorials    TutorialRepo
	Progress     ProgressRepo
	CodeLogs     CodeLogRepo
	Sessions     SessionRepo
	HelpRequests HelpRequestRepo
	ErrorLogs    ErrorLogRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Users:        classroom.NewUserRepo(db, log),
		Profiles:     classroom.NewProfileRepo(db, log),
		Tutorials:    classroom.NewTutorialRepo(db, log),
		Progress:     classroom.NewProgressRepo(db, log),
		CodeLogs:     classroom.NewCodeLogRepo(db, log),
		Sessions:     classroom.NewSessionRepo(db, log),
		HelpRequests: classroom.NewHelpRequestRepo(db, log),
		ErrorLogs:    classroom.NewErrorLogRepo(db, log),
	}
}
