package classroom

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ErrorLog is a client-side error reported by a student's browser.
type ErrorLog struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"student_id"`
	ErrorMessage string         `gorm:"column:error_message;type:text;not null" json:"error_message"`
	ErrorStack   *string        `gorm:"column:error_stack;type:text" json:"error_stack,omitempty"`
	Context      datatypes.JSON `gorm:"column:context" json:"context,omitempty"`
	Resolved     bool           `gorm:"column:resolved;not null" json:"resolved"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
}

func (ErrorLog) TableName() string { return "error_logs" }
