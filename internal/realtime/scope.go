package realtime

import "github.com/google/uuid"

// Filter matches one table, optionally narrowed to one student's rows.
type Filter struct {
	Table     Table
	StudentID uuid.UUID
}

type Scope []Filter

// SelfScope covers a student's own help requests and progress rows.
func SelfScope(studentID uuid.UUID) Scope {
	return Scope{
		{Table: TableHelpRequests, StudentID: studentID},
		{Table: TableProgress, StudentID: studentID},
	}
}

// TeacherScope covers every student's rows in the observed tables.
func TeacherScope() Scope {
	return Scope{
		{Table: TableHelpRequests},
		{Table: TableCodeLogs},
		{Table: TableProgress},
		{Table: TableSessions},
	}
}

// With returns a copy of s that also matches all rows of tables.
func (s Scope) With(tables ...Table) Scope {
	out := make(Scope, 0, len(s)+len(tables))
	out = append(out, s...)
	for _, t := range tables {
		out = append(out, Filter{Table: t})
	}
	return out
}

func (s Scope) Matches(ev ChangeEvent) bool {
	for _, f := range s {
		if f.Table != ev.Table {
			continue
		}
		if f.StudentID == uuid.Nil || f.StudentID == ev.StudentID {
			return true
		}
	}
	return false
}
