package services

import "time"

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// MonthRange returns the half-open range [first day, first day of next month).
func MonthRange(year int, month time.Month, location *time.Location) (time.Time, time.Time) {
	if location == nil {
		location = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, location)
	return start, start.AddDate(0, 1, 0)
}

// CalendarDaysBetween counts calendar days from one date to another, ignoring
// clock time and DST shifts.
func CalendarDaysBetween(from time.Time, to time.Time) int {
	fromYear, fromMonth, fromDay := from.Date()
	toYear, toMonth, toDay := to.In(from.Location()).Date()
	fromUTC := time.Date(fromYear, fromMonth, fromDay, 0, 0, 0, 0, time.UTC)
	toUTC := time.Date(toYear, toMonth, toDay, 0, 0, 0, 0, time.UTC)
	return int(toUTC.Sub(fromUTC).Hours() / 24)
}

// StorageDay returns the local calendar date of value as UTC midnight. Date-only
// columns are persisted in this form so sqlite and postgres compare them alike.
func StorageDay(value time.Time, location *time.Location) time.Time {
	year, month, day := DateAtLocation(value, location).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
