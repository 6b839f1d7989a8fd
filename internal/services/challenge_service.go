package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/glowlog/internal/models"
)

var (
	ErrChallengeNotFound       = errors.New("challenge not found")
	ErrChallengeAlreadyJoined  = errors.New("challenge already joined")
	ErrChallengeNotActive      = errors.New("challenge not active")
	ErrCheckInOutsideWindow    = errors.New("check-in outside challenge window")
	ErrChallengeAlreadyChecked = errors.New("already checked in today")
)

type ChallengeRepository interface {
	ListChallenges() ([]models.Challenge, error)
	FindChallengeByID(challengeID uint) (models.Challenge, bool, error)
	HasActiveParticipation(userID uint, challengeID uint) (bool, error)
	CreateParticipation(participation *models.UserChallenge) error
	ListParticipations(userID uint) ([]models.UserChallenge, error)
	FindParticipationForUser(userID uint, participationID uint) (models.UserChallenge, bool, error)
	UpdateParticipationStatus(participationID uint, status string, finishedAt time.Time) error
	ListExpiredActive(today time.Time) ([]models.UserChallenge, error)
}

type ChallengeCheckInRepository interface {
	HasCheckIn(participationID uint, day time.Time) (bool, error)
	CreateCheckIn(checkIn *models.ChallengeCheckIn) error
	ListCheckInDays(participationID uint) ([]time.Time, error)
}

type UserChallengeView struct {
	Participation models.UserChallenge
	Progress      ChallengeProgress
}

type ChallengeService struct {
	challenges ChallengeRepository
	checkIns   ChallengeCheckInRepository
	location   *time.Location
}

func NewChallengeService(challenges ChallengeRepository, checkIns ChallengeCheckInRepository, location *time.Location) *ChallengeService {
	if location == nil {
		location = time.UTC
	}
	return &ChallengeService{
		challenges: challenges,
		checkIns:   checkIns,
		location:   location,
	}
}

func (service *ChallengeService) ListCatalog() ([]models.Challenge, error) {
	return service.challenges.ListChallenges()
}

// Join starts a participation on the local day of now. A user may hold only
// one active participation per challenge.
func (service *ChallengeService) Join(userID uint, challengeID uint, now time.Time) (models.UserChallenge, error) {
	challenge, found, err := service.challenges.FindChallengeByID(challengeID)
	if err != nil {
		return models.UserChallenge{}, fmt.Errorf("load challenge: %w", err)
	}
	if !found {
		return models.UserChallenge{}, ErrChallengeNotFound
	}

	active, err := service.challenges.HasActiveParticipation(userID, challengeID)
	if err != nil {
		return models.UserChallenge{}, fmt.Errorf("check active participation: %w", err)
	}
	if active {
		return models.UserChallenge{}, ErrChallengeAlreadyJoined
	}

	duration := EffectiveDurationDays(challenge)
	start := StorageDay(now, service.location)
	participation := models.UserChallenge{
		UserID:      userID,
		ChallengeID: challenge.ID,
		Challenge:   challenge,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, duration-1),
		Status:      models.ChallengeStatusActive,
	}
	if err := service.challenges.CreateParticipation(&participation); err != nil {
		return models.UserChallenge{}, fmt.Errorf("create participation: %w", err)
	}
	return participation, nil
}

func (service *ChallengeService) CheckIn(userID uint, participationID uint, now time.Time) (UserChallengeView, error) {
	participation, err := service.findParticipation(userID, participationID)
	if err != nil {
		return UserChallengeView{}, err
	}
	if participation.Status != models.ChallengeStatusActive {
		return UserChallengeView{}, ErrChallengeNotActive
	}

	today := StorageDay(now, service.location)
	if today.Before(participation.StartDate) || today.After(participation.EndDate) {
		return UserChallengeView{}, ErrCheckInOutsideWindow
	}

	checked, err := service.checkIns.HasCheckIn(participation.ID, today)
	if err != nil {
		return UserChallengeView{}, fmt.Errorf("check existing check-in: %w", err)
	}
	if checked {
		return UserChallengeView{}, ErrChallengeAlreadyChecked
	}

	if err := service.checkIns.CreateCheckIn(&models.ChallengeCheckIn{
		UserChallengeID: participation.ID,
		UserID:          userID,
		Date:            today,
	}); err != nil {
		return UserChallengeView{}, fmt.Errorf("create check-in: %w", err)
	}
	return service.view(participation, today)
}

func (service *ChallengeService) ListForUser(userID uint, now time.Time) ([]UserChallengeView, error) {
	participations, err := service.challenges.ListParticipations(userID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}

	today := StorageDay(now, service.location)
	views := make([]UserChallengeView, 0, len(participations))
	for _, participation := range participations {
		view, err := service.view(participation, today)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (service *ChallengeService) Abandon(userID uint, participationID uint, now time.Time) error {
	participation, err := service.findParticipation(userID, participationID)
	if err != nil {
		return err
	}
	if participation.Status != models.ChallengeStatusActive {
		return ErrChallengeNotActive
	}
	if err := service.challenges.UpdateParticipationStatus(participation.ID, models.ChallengeStatusAbandoned, now); err != nil {
		return fmt.Errorf("abandon participation: %w", err)
	}
	return nil
}

// ExpireChallenges settles every active participation whose end date is before
// today. It returns how many participations changed status.
func (service *ChallengeService) ExpireChallenges(ctx context.Context, now time.Time) (int, error) {
	today := StorageDay(now, service.location)
	expired, err := service.challenges.ListExpiredActive(today)
	if err != nil {
		return 0, fmt.Errorf("list expired challenges: %w", err)
	}

	settled := 0
	for _, participation := range expired {
		if err := ctx.Err(); err != nil {
			return settled, err
		}
		days, err := service.checkIns.ListCheckInDays(participation.ID)
		if err != nil {
			return settled, fmt.Errorf("list check-ins for participation %d: %w", participation.ID, err)
		}
		progress := BuildChallengeProgress(participation, days, today)
		status := FinalChallengeStatus(progress.CheckIns, EffectiveDurationDays(participation.Challenge))
		if err := service.challenges.UpdateParticipationStatus(participation.ID, status, now); err != nil {
			return settled, fmt.Errorf("settle participation %d: %w", participation.ID, err)
		}
		settled++
	}
	return settled, nil
}

func (service *ChallengeService) findParticipation(userID uint, participationID uint) (models.UserChallenge, error) {
	participation, found, err := service.challenges.FindParticipationForUser(userID, participationID)
	if err != nil {
		return models.UserChallenge{}, fmt.Errorf("load participation: %w", err)
	}
	if !found {
		return models.UserChallenge{}, ErrChallengeNotFound
	}
	return participation, nil
}

func (service *ChallengeService) view(participation models.UserChallenge, today time.Time) (UserChallengeView, error) {
	days, err := service.checkIns.ListCheckInDays(participation.ID)
	if err != nil {
		return UserChallengeView{}, fmt.Errorf("list check-ins: %w", err)
	}
	return UserChallengeView{
		Participation: participation,
		Progress:      BuildChallengeProgress(participation, days, today),
	}, nil
}
