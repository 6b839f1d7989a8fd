package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/glowlog/internal/models"
)

const (
	MinCalendarYear = 2000
	MaxCalendarYear = 2100
)

var (
	ErrInvalidYearRange  = errors.New("invalid year range")
	ErrInvalidMonthRange = errors.New("invalid month range")
	ErrProcedureNotFound = errors.New("procedure not found")
)

type ScheduledProcedureRepository interface {
	ListByUserRange(userID uint, from time.Time, to time.Time) ([]models.ScheduledProcedure, error)
	ListByUserBefore(userID uint, from time.Time, before time.Time) ([]models.ScheduledProcedure, error)
	FindByIDForUser(userID uint, scheduledID uint) (models.ScheduledProcedure, bool, error)
}

type ScheduledProcedureDetail struct {
	Scheduled models.ScheduledProcedure
	Downtime  DowntimeWindow
}

type CalendarService struct {
	procedures ScheduledProcedureRepository
	location   *time.Location
}

func NewCalendarService(procedures ScheduledProcedureRepository, location *time.Location) *CalendarService {
	if location == nil {
		location = time.UTC
	}
	return &CalendarService{procedures: procedures, location: location}
}

func ValidateCalendarMonth(year int, month int) error {
	if year < MinCalendarYear || year > MaxCalendarYear {
		return ErrInvalidYearRange
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonthRange
	}
	return nil
}

// MonthlyCounts maps day-of-month to the number of procedures scheduled on it.
// Days without procedures are absent from the result.
func (service *CalendarService) MonthlyCounts(userID uint, year int, month int) (map[int]int, error) {
	if err := ValidateCalendarMonth(year, month); err != nil {
		return nil, err
	}

	from, to := MonthRange(year, time.Month(month), service.location)
	scheduled, err := service.procedures.ListByUserRange(userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list monthly procedures: %w", err)
	}

	counts := make(map[int]int)
	for _, entry := range scheduled {
		day := DateAtLocation(entry.ScheduledAt, service.location)
		if day.Before(from) || !day.Before(to) {
			continue
		}
		counts[day.Day()]++
	}
	return counts, nil
}

func (service *CalendarService) DailyDetail(userID uint, day time.Time) ([]ScheduledProcedureDetail, error) {
	if day.IsZero() {
		return nil, ErrInvalidStartDate
	}

	dayStart, dayEnd := DayRange(day, service.location)
	scheduled, err := service.procedures.ListByUserRange(userID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list daily procedures: %w", err)
	}

	details := make([]ScheduledProcedureDetail, 0, len(scheduled))
	for _, entry := range scheduled {
		window, err := ProcedureDowntime(entry, service.location)
		if err != nil {
			return nil, err
		}
		details = append(details, ScheduledProcedureDetail{Scheduled: entry, Downtime: window})
	}
	return details, nil
}

func (service *CalendarService) EventDowntime(userID uint, scheduledID uint) (DowntimeWindow, error) {
	entry, found, err := service.procedures.FindByIDForUser(userID, scheduledID)
	if err != nil {
		return DowntimeWindow{}, fmt.Errorf("load scheduled procedure: %w", err)
	}
	if !found {
		return DowntimeWindow{}, ErrProcedureNotFound
	}
	return ProcedureDowntime(entry, service.location)
}

// ProcedureDowntime recomputes the window from the persisted schedule date and
// the effective downtime length.
func ProcedureDowntime(scheduled models.ScheduledProcedure, location *time.Location) (DowntimeWindow, error) {
	if scheduled.ScheduledAt.IsZero() {
		return DowntimeWindow{}, ErrInvalidStartDate
	}
	return CalculateDowntime(scheduled.EffectiveDowntimeDays(), DateAtLocation(scheduled.ScheduledAt, location))
}
