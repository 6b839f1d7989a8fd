package models

import "time"

// Procedure is a catalog treatment. The downtime range is the catalog default
// used when a scheduled procedure carries no per-user override.
type Procedure struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"not null;uniqueIndex" json:"name"`
	Category        string `gorm:"not null;index" json:"category"`
	Description     string `gorm:"not null;default:''" json:"description"`
	Keywords        string `gorm:"not null;default:''" json:"keywords"`
	DowntimeMinDays int    `gorm:"not null;default:0" json:"downtime_min_days"`
	DowntimeMaxDays int    `gorm:"not null;default:0" json:"downtime_max_days"`
}

type ScheduledProcedure struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index:idx_scheduled_user_date" json:"-"`
	ProcedureID  uint      `gorm:"not null;index" json:"procedure_id"`
	Procedure    Procedure `gorm:"foreignKey:ProcedureID" json:"procedure"`
	ScheduledAt  time.Time `gorm:"not null;index:idx_scheduled_user_date" json:"scheduled_at"`
	DowntimeDays *int      `json:"downtime_days"`
	Memo         string    `gorm:"not null;default:''" json:"memo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EffectiveDowntimeDays prefers the user's override and falls back to the
// upper bound of the catalog range.
func (scheduled ScheduledProcedure) EffectiveDowntimeDays() int {
	if scheduled.DowntimeDays != nil {
		return *scheduled.DowntimeDays
	}
	if scheduled.Procedure.DowntimeMaxDays > 0 {
		return scheduled.Procedure.DowntimeMaxDays
	}
	return 0
}
