package classroom

import (
	"time"

	"github.com/google/uuid"
)

// CodeLog is an append-only snapshot of a student's editor buffer.
type CodeLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_code_logs_student_ts,priority:1" json:"student_id"`
	Code         string     `gorm:"column:code;type:text;not null" json:"code"`
	IsSubmission bool       `gorm:"column:is_submission;not null" json:"is_submission"`
	SessionID    *uuid.UUID `gorm:"type:uuid;column:session_id;index" json:"session_id,omitempty"`
	TutorialID   *uuid.UUID `gorm:"type:uuid;column:tutorial_id" json:"tutorial_id,omitempty"`
	StepNumber   *int       `gorm:"column:step_number" json:"step_number,omitempty"`
	Timestamp    time.Time  `gorm:"column:timestamp;not null;index:idx_code_logs_student_ts,priority:2" json:"timestamp"`
}

func (CodeLog) TableName() string { return "code_logs" }
