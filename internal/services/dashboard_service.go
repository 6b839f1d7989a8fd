package services

import (
	"fmt"
	"time"

	"github.com/terraincognita07/glowlog/internal/models"
)

// DashboardLookbackDays bounds how far back the dashboard searches for a
// procedure that is still in downtime.
const DashboardLookbackDays = 180

type DashboardUserRepository interface {
	FindByID(userID uint) (models.User, error)
}

type DashboardChallengeRepository interface {
	CountActiveByUser(userID uint) (int64, error)
	CountCheckInsByUserAndDay(userID uint, day time.Time) (int64, error)
}

type RecentProcedure struct {
	Scheduled     models.ScheduledProcedure
	Downtime      DowntimeWindow
	Phase         DowntimePhase
	DaysSince     int
	DayOfRecovery int
	RemainingDays int
}

type Dashboard struct {
	Nickname           string
	Today              time.Time
	RecentProcedure    *RecentProcedure
	ActiveChallenges   int64
	TodayCheckIns      int64
	UpcomingProcedures []models.ScheduledProcedure
}

type DashboardService struct {
	users      DashboardUserRepository
	procedures ScheduledProcedureRepository
	challenges DashboardChallengeRepository
	location   *time.Location
}

func NewDashboardService(users DashboardUserRepository, procedures ScheduledProcedureRepository, challenges DashboardChallengeRepository, location *time.Location) *DashboardService {
	if location == nil {
		location = time.UTC
	}
	return &DashboardService{
		users:      users,
		procedures: procedures,
		challenges: challenges,
		location:   location,
	}
}

func (service *DashboardService) Build(userID uint, now time.Time) (Dashboard, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard user: %w", err)
	}

	today := DateAtLocation(now, service.location)
	recent, err := service.RecentProcedure(userID, today)
	if err != nil {
		return Dashboard{}, err
	}

	upcoming, err := service.procedures.ListByUserRange(userID, today.AddDate(0, 0, 1), today.AddDate(0, 0, 31))
	if err != nil {
		return Dashboard{}, fmt.Errorf("list upcoming procedures: %w", err)
	}

	activeChallenges, err := service.challenges.CountActiveByUser(userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("count active challenges: %w", err)
	}
	todayCheckIns, err := service.challenges.CountCheckInsByUserAndDay(userID, StorageDay(today, service.location))
	if err != nil {
		return Dashboard{}, fmt.Errorf("count today check-ins: %w", err)
	}

	return Dashboard{
		Nickname:           user.Nickname,
		Today:              today,
		RecentProcedure:    recent,
		ActiveChallenges:   activeChallenges,
		TodayCheckIns:      todayCheckIns,
		UpcomingProcedures: upcoming,
	}, nil
}

// RecentProcedure returns the latest procedure scheduled on or before today
// whose downtime has not finished yet. Completed procedures are skipped.
func (service *DashboardService) RecentProcedure(userID uint, now time.Time) (*RecentProcedure, error) {
	today := DateAtLocation(now, service.location)
	from := today.AddDate(0, 0, -DashboardLookbackDays)
	candidates, err := service.procedures.ListByUserBefore(userID, from, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list recent procedures: %w", err)
	}

	for _, candidate := range candidates {
		window, err := ProcedureDowntime(candidate, service.location)
		if err != nil {
			return nil, err
		}
		phase := ClassifyDowntimePhase(window, today)
		if phase == DowntimePhaseCompleted {
			continue
		}

		procedureDay := DateAtLocation(candidate.ScheduledAt, service.location)
		daysSince := CalendarDaysBetween(procedureDay, today)
		return &RecentProcedure{
			Scheduled:     candidate,
			Downtime:      window,
			Phase:         phase,
			DaysSince:     daysSince,
			DayOfRecovery: daysSince + 1,
			RemainingDays: window.TotalDays() - daysSince - 1,
		}, nil
	}
	return nil, nil
}
