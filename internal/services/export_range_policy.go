package services

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrExportFromDateInvalid = errors.New("export invalid from date")
	ErrExportToDateInvalid   = errors.New("export invalid to date")
	ErrExportRangeInvalid    = errors.New("export invalid range")
	ErrInvalidCalendarDate   = errors.New("invalid calendar date")
)

// ParseCalendarDate parses a YYYY-MM-DD day in location.
func ParseCalendarDate(raw string, location *time.Location) (time.Time, error) {
	parsed, err := time.ParseInLocation(exportDateLayout, strings.TrimSpace(raw), location)
	if err != nil {
		return time.Time{}, ErrInvalidCalendarDate
	}
	if parsed.Year() < MinCalendarYear || parsed.Year() > MaxCalendarYear {
		return time.Time{}, ErrInvalidYearRange
	}
	return parsed, nil
}

// ParseExportRange accepts empty bounds as open-ended.
func ParseExportRange(rawFrom string, rawTo string, location *time.Location) (*time.Time, *time.Time, error) {
	from, err := parseOptionalExportDate(rawFrom, location, ErrExportFromDateInvalid)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseOptionalExportDate(rawTo, location, ErrExportToDateInvalid)
	if err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, ErrExportRangeInvalid
	}
	return from, to, nil
}

func parseOptionalExportDate(raw string, location *time.Location, invalid error) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := ParseCalendarDate(raw, location)
	if err != nil {
		return nil, invalid
	}
	return &parsed, nil
}
