package services

import (
	"errors"
	"time"
)

var (
	ErrInvalidDowntimeDays = errors.New("invalid downtime days")
	ErrInvalidStartDate    = errors.New("invalid start date")
)

// DowntimeWindow splits a recovery period into three contiguous phases that
// start on the treatment date. It is derived on every read and never stored.
type DowntimeWindow struct {
	SensitiveDays []time.Time
	CautionDays   []time.Time
	RecoveryDays  []time.Time
}

// CalculateDowntime partitions downtimeDays into sensitive, caution and
// recovery days. The remainder of an uneven split goes to the earlier phases:
// one extra day lands on sensitive, two extra days land on sensitive and caution.
func CalculateDowntime(downtimeDays int, startDate time.Time) (DowntimeWindow, error) {
	if downtimeDays < 0 {
		return DowntimeWindow{}, ErrInvalidDowntimeDays
	}
	if startDate.IsZero() {
		return DowntimeWindow{}, ErrInvalidStartDate
	}

	base := downtimeDays / 3
	remainder := downtimeDays % 3

	sensitiveCount := base
	if remainder >= 1 {
		sensitiveCount++
	}
	cautionCount := base
	if remainder >= 2 {
		cautionCount++
	}
	recoveryCount := base

	start := calendarDate(startDate)
	return DowntimeWindow{
		SensitiveDays: consecutiveDays(start, sensitiveCount),
		CautionDays:   consecutiveDays(start.AddDate(0, 0, sensitiveCount), cautionCount),
		RecoveryDays:  consecutiveDays(start.AddDate(0, 0, sensitiveCount+cautionCount), recoveryCount),
	}, nil
}

func (window DowntimeWindow) TotalDays() int {
	return len(window.SensitiveDays) + len(window.CautionDays) + len(window.RecoveryDays)
}

func (window DowntimeWindow) IsEmpty() bool {
	return window.TotalDays() == 0
}

// Days returns every day of the window in phase order.
func (window DowntimeWindow) Days() []time.Time {
	days := make([]time.Time, 0, window.TotalDays())
	days = append(days, window.SensitiveDays...)
	days = append(days, window.CautionDays...)
	return append(days, window.RecoveryDays...)
}

func (window DowntimeWindow) Start() (time.Time, bool) {
	days := window.Days()
	if len(days) == 0 {
		return time.Time{}, false
	}
	return days[0], true
}

func (window DowntimeWindow) End() (time.Time, bool) {
	days := window.Days()
	if len(days) == 0 {
		return time.Time{}, false
	}
	return days[len(days)-1], true
}

func (window DowntimeWindow) Contains(day time.Time) bool {
	return containsCalendarDay(window.Days(), day)
}

func consecutiveDays(start time.Time, count int) []time.Time {
	days := make([]time.Time, 0, count)
	for offset := 0; offset < count; offset++ {
		days = append(days, start.AddDate(0, 0, offset))
	}
	return days
}

func calendarDate(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, value.Location())
}
