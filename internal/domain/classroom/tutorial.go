package classroom

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Tutorial struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	TutorialID string                      `gorm:"column:tutorial_id;not null;uniqueIndex" json:"tutorial_id"`
	Title      string                      `gorm:"column:title;not null" json:"title"`
	Steps      datatypes.JSONSlice[string] `gorm:"column:steps" json:"steps"`
	CreatedAt  time.Time                   `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time                   `gorm:"not null" json:"updated_at"`
}

func (Tutorial) TableName() string { return "tutorials" }

func (t *Tutorial) StepCount() int {
	if t == nil {
		return 0
	}
	return len(t.Steps)
}
