package classroom

import (
	"time"

	"github.com/google/uuid"
)

const (
	HelpStatusPending   = "pending"
	HelpStatusResponded = "responded"
)

type HelpRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	TeacherID   *uuid.UUID `gorm:"type:uuid;column:teacher_id" json:"teacher_id,omitempty"`
	Message     string     `gorm:"column:message;type:text;not null" json:"message"`
	Response    *string    `gorm:"column:response;type:text" json:"response,omitempty"`
	Status      string     `gorm:"column:status;not null;index" json:"status"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	RespondedAt *time.Time `gorm:"column:responded_at" json:"responded_at,omitempty"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (HelpRequest) TableName() string { return "help_requests" }

// Unanswered reports whether no response text has been recorded.
func (h *HelpRequest) Unanswered() bool {
	return h.Response == nil || *h.Response == ""
}
