package classroom

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Progress is a student's position in one tutorial. The unique
// (student_id, tutorial_id) index is what upserts conflict on.
type Progress struct {
	ID             uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID      uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:ux_student_progress_pair,priority:1" json:"student_id"`
	TutorialID     uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:ux_student_progress_pair,priority:2;index" json:"tutorial_id"`
	CurrentStep    int                      `gorm:"column:current_step;not null" json:"current_step"`
	CompletedSteps datatypes.JSONSlice[int] `gorm:"column:completed_steps" json:"completed_steps"`
	StartedAt      time.Time                `gorm:"column:started_at;not null" json:"started_at"`
	UpdatedAt      time.Time                `gorm:"not null;index" json:"updated_at"`
}

func (Progress) TableName() string { return "student_progress" }

// MarkCompleted adds step to the completed set, keeping it sorted and unique.
func (p *Progress) MarkCompleted(step int) {
	for _, s := range p.CompletedSteps {
		if s == step {
			return
		}
	}
	p.CompletedSteps = append(p.CompletedSteps, step)
	sort.Ints(p.CompletedSteps)
}
