package classroom

import (
	"time"

	"github.com/google/uuid"
)

// Session is a bounded interval of student engagement.
type Session struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_sessions_student_active,priority:1" json:"student_id"`
	SessionStart time.Time  `gorm:"column:session_start;not null" json:"session_start"`
	SessionEnd   *time.Time `gorm:"column:session_end" json:"session_end,omitempty"`
	IsActive     bool       `gorm:"column:is_active;not null;index:idx_sessions_student_active,priority:2" json:"is_active"`
	LastActivity time.Time  `gorm:"column:last_activity;not null" json:"last_activity"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
}

func (Session) TableName() string { return "student_sessions" }
