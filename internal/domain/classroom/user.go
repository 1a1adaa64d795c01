package classroom

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserTypeStudent = "student"
	UserTypeTeacher = "teacher"
)

// User holds sign-in credentials. Everything a person owns references User.ID.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Profile is created once at onboarding. UserType never changes afterwards.
type Profile struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Name     string    `gorm:"column:name;not null" json:"name"`
	UserType string    `gorm:"column:user_type;not null;index" json:"user_type"`
	// StudentNumber is the school-issued number, not the identity.
	StudentNumber *string   `gorm:"column:student_id" json:"student_id,omitempty"`
	CreatedAt     time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

func ValidUserType(t string) bool {
	return t == UserTypeStudent || t == UserTypeTeacher
}
