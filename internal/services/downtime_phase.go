package services

import "time"

type DowntimePhase string

const (
	DowntimePhaseSensitive DowntimePhase = "SENSITIVE"
	DowntimePhaseCaution   DowntimePhase = "CAUTION"
	DowntimePhaseRecovery  DowntimePhase = "RECOVERY"
	DowntimePhaseCompleted DowntimePhase = "COMPLETED"
)

// ClassifyDowntimePhase reports which phase of the window today falls into.
// Days outside the window, before or after it, are both COMPLETED.
func ClassifyDowntimePhase(window DowntimeWindow, today time.Time) DowntimePhase {
	switch {
	case containsCalendarDay(window.SensitiveDays, today):
		return DowntimePhaseSensitive
	case containsCalendarDay(window.CautionDays, today):
		return DowntimePhaseCaution
	case containsCalendarDay(window.RecoveryDays, today):
		return DowntimePhaseRecovery
	default:
		return DowntimePhaseCompleted
	}
}

func containsCalendarDay(days []time.Time, target time.Time) bool {
	for _, day := range days {
		if sameCalendarDay(day, target) {
			return true
		}
	}
	return false
}

func sameCalendarDay(left time.Time, right time.Time) bool {
	leftYear, leftMonth, leftDay := left.Date()
	rightYear, rightMonth, rightDay := right.In(left.Location()).Date()
	return leftYear == rightYear && leftMonth == rightMonth && leftDay == rightDay
}
