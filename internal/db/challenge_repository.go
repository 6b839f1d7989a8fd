package db

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/terraincognita07/glowlog/internal/models"
)

type ChallengeRepository struct {
	database *gorm.DB
}

func NewChallengeRepository(database *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{database: database}
}

func (repo *ChallengeRepository) ListChallenges() ([]models.Challenge, error) {
	challenges := make([]models.Challenge, 0)
	if err := repo.database.Order("category ASC, id ASC").Find(&challenges).Error; err != nil {
		return nil, err
	}
	return challenges, nil
}

func (repo *ChallengeRepository) FindChallengeByID(challengeID uint) (models.Challenge, bool, error) {
	var challenge models.Challenge
	err := repo.database.First(&challenge, challengeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Challenge{}, false, nil
	}
	if err != nil {
		return models.Challenge{}, false, err
	}
	return challenge, true, nil
}

func (repo *ChallengeRepository) HasActiveParticipation(userID uint, challengeID uint) (bool, error) {
	var count int64
	if err := repo.database.Model(&models.UserChallenge{}).
		Where("user_id = ? AND challenge_id = ? AND status = ?", userID, challengeID, models.ChallengeStatusActive).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (repo *ChallengeRepository) CreateParticipation(participation *models.UserChallenge) error {
	return repo.database.Omit("Challenge").Create(participation).Error
}

func (repo *ChallengeRepository) ListParticipations(userID uint) ([]models.UserChallenge, error) {
	participations := make([]models.UserChallenge, 0)
	if err := repo.database.
		Preload("Challenge").
		Where("user_id = ?", userID).
		Order("start_date DESC, id DESC").
		Find(&participations).Error; err != nil {
		return nil, err
	}
	return participations, nil
}

func (repo *ChallengeRepository) FindParticipationForUser(userID uint, participationID uint) (models.UserChallenge, bool, error) {
	var participation models.UserChallenge
	err := repo.database.
		Preload("Challenge").
		Where("id = ? AND user_id = ?", participationID, userID).
		First(&participation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserChallenge{}, false, nil
	}
	if err != nil {
		return models.UserChallenge{}, false, err
	}
	return participation, true, nil
}

func (repo *ChallengeRepository) UpdateParticipationStatus(participationID uint, status string, finishedAt time.Time) error {
	return repo.database.Model(&models.UserChallenge{}).
		Where("id = ?", participationID).
		Updates(map[string]any{
			"status":      status,
			"finished_at": finishedAt.UTC(),
		}).Error
}

// ListExpiredActive returns active participations whose end date is before
// today.
func (repo *ChallengeRepository) ListExpiredActive(today time.Time) ([]models.UserChallenge, error) {
	participations := make([]models.UserChallenge, 0)
	if err := repo.database.
		Preload("Challenge").
		Where("status = ? AND end_date < ?", models.ChallengeStatusActive, today).
		Order("id ASC").
		Find(&participations).Error; err != nil {
		return nil, err
	}
	return participations, nil
}

func (repo *ChallengeRepository) CountActiveByUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.UserChallenge{}).
		Where("user_id = ? AND status = ?", userID, models.ChallengeStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *ChallengeRepository) CountCheckInsByUserAndDay(userID uint, day time.Time) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.ChallengeCheckIn{}).
		Where("user_id = ? AND date = ?", userID, day).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *ChallengeRepository) HasCheckIn(participationID uint, day time.Time) (bool, error) {
	var count int64
	if err := repo.database.Model(&models.ChallengeCheckIn{}).
		Where("user_challenge_id = ? AND date = ?", participationID, day).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (repo *ChallengeRepository) CreateCheckIn(checkIn *models.ChallengeCheckIn) error {
	return repo.database.Create(checkIn).Error
}

func (repo *ChallengeRepository) ListCheckInDays(participationID uint) ([]time.Time, error) {
	checkIns := make([]models.ChallengeCheckIn, 0)
	if err := repo.database.
		Select("date").
		Where("user_challenge_id = ?", participationID).
		Order("date ASC").
		Find(&checkIns).Error; err != nil {
		return nil, err
	}

	days := make([]time.Time, 0, len(checkIns))
	for _, checkIn := range checkIns {
		days = append(days, checkIn.Date.UTC())
	}
	return days, nil
}
