package domain

import "github.com/yungbote/smartassist-backend/internal/domain/classroom"

const (
	UserTypeStudent = classroom.UserTypeStudent
	UserTypeTeacher = classroom.UserTypeTeacher

	HelpStatusPending   = classroom.HelpStatusPending
	HelpStatusResponded = classroom.HelpStatusResponded
)

type User = classroom.User
type Profile = classroom.Profile
type Tutorial = classroom.Tutorial
type Progress = classroom.Progress
type CodeLog = classroom.CodeLog
type Session = classroom.Session
type HelpRequest = classroom.HelpRequest
type ErrorLog = classroom.ErrorLog

var ValidUserType = classroom.ValidUserType

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&User{},
		&Profile{},
		&Tutorial{},
		&Progress{},
		&CodeLog{},
		&Session{},
		&HelpRequest{},
		&ErrorLog{},
	}
}
