package models

import "time"

type Recommendation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"-"`
	BatchID     string    `gorm:"not null;index" json:"batch_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"not null;default:''" json:"description"`
	Category    string    `gorm:"not null;default:''" json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}
