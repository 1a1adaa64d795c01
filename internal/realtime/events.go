package realtime

import (
	"time"

	"github.com/google/uuid"
)

type Table string

const (
	TableHelpRequests Table = "help_requests"
	TableCodeLogs     Table = "code_logs"
	TableProgress     Table = "student_progress"
	TableSessions     Table = "student_sessions"
	// TableDashboard signals that a new teacher composite view is ready.
	TableDashboard Table = "dashboard"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
)

// ChangeEvent says which table changed for which student. It is a signal
// to re-read state, never a delta to apply.
type ChangeEvent struct {
	Table     Table     `json:"table"`
	Op        Op        `json:"op,omitempty"`
	StudentID uuid.UUID `json:"student_id"`
	RowID     uuid.UUID `json:"row_id,omitempty"`
	At        time.Time `json:"at"`
}
