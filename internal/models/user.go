package models

import "time"

const (
	GenderFemale = "female"
	GenderMale   = "male"
	GenderOther  = "other"
)

type User struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Email               string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash        string    `gorm:"not null" json:"-"`
	Nickname            string    `gorm:"not null;default:''" json:"nickname"`
	BirthYear           int       `gorm:"not null;default:0" json:"birth_year"`
	Gender              string    `gorm:"not null;default:''" json:"gender"`
	Concerns            []string  `gorm:"serializer:json" json:"concerns"`
	OnboardingCompleted bool      `gorm:"not null;default:false" json:"onboarding_completed"`
	MustChangePassword  bool      `gorm:"not null;default:false" json:"must_change_password"`
	CreatedAt           time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
