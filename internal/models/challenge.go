package models

import "time"

const (
	ChallengeStatusActive    = "ACTIVE"
	ChallengeStatusCompleted = "COMPLETED"
	ChallengeStatusFailed    = "FAILED"
	ChallengeStatusAbandoned = "ABANDONED"
)

type Challenge struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	Title            string `gorm:"not null;uniqueIndex" json:"title"`
	Description      string `gorm:"not null;default:''" json:"description"`
	Category         string `gorm:"not null;index" json:"category"`
	DurationDays     int    `gorm:"not null" json:"duration_days"`
	PointsPerCheckIn int    `gorm:"not null;default:10" json:"points_per_check_in"`
}

type UserChallenge struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"-"`
	ChallengeID uint       `gorm:"not null;index" json:"challenge_id"`
	Challenge   Challenge  `gorm:"foreignKey:ChallengeID" json:"challenge"`
	StartDate   time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time  `gorm:"type:date;not null;index" json:"end_date"`
	Status      string     `gorm:"not null;default:ACTIVE;index" json:"status"`
	FinishedAt  *time.Time `json:"finished_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ChallengeCheckIn struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserChallengeID uint      `gorm:"not null;uniqueIndex:uidx_check_in_day" json:"user_challenge_id"`
	UserID          uint      `gorm:"not null;index" json:"-"`
	Date            time.Time `gorm:"type:date;not null;uniqueIndex:uidx_check_in_day" json:"date"`
	CreatedAt       time.Time `json:"created_at"`
}
