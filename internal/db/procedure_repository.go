package db

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/terraincognita07/glowlog/internal/models"
)

type ProcedureRepository struct {
	database *gorm.DB
}

func NewProcedureRepository(database *gorm.DB) *ProcedureRepository {
	return &ProcedureRepository{database: database}
}

func (repo *ProcedureRepository) List() ([]models.Procedure, error) {
	procedures := make([]models.Procedure, 0)
	if err := repo.database.Order("category ASC, name ASC").Find(&procedures).Error; err != nil {
		return nil, err
	}
	return procedures, nil
}

func (repo *ProcedureRepository) FindByID(procedureID uint) (models.Procedure, bool, error) {
	var procedure models.Procedure
	err := repo.database.First(&procedure, procedureID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Procedure{}, false, nil
	}
	if err != nil {
		return models.Procedure{}, false, err
	}
	return procedure, true, nil
}

type ScheduledProcedureRepository struct {
	database *gorm.DB
}

func NewScheduledProcedureRepository(database *gorm.DB) *ScheduledProcedureRepository {
	return &ScheduledProcedureRepository{database: database}
}

// Create stores scheduled_at in UTC so range filters compare consistently on
// sqlite, where timestamps are kept as text.
func (repo *ScheduledProcedureRepository) Create(entry *models.ScheduledProcedure) error {
	local := entry.ScheduledAt
	entry.ScheduledAt = local.UTC()
	err := repo.database.Omit("Procedure").Create(entry).Error
	entry.ScheduledAt = local
	return err
}

// ListByUserRange returns procedures in [from, to) ordered by time.
func (repo *ScheduledProcedureRepository) ListByUserRange(userID uint, from time.Time, to time.Time) ([]models.ScheduledProcedure, error) {
	entries := make([]models.ScheduledProcedure, 0)
	if err := repo.database.
		Preload("Procedure").
		Where("user_id = ? AND scheduled_at >= ? AND scheduled_at < ?", userID, from.UTC(), to.UTC()).
		Order("scheduled_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByUserBefore returns procedures in [from, before), newest first.
func (repo *ScheduledProcedureRepository) ListByUserBefore(userID uint, from time.Time, before time.Time) ([]models.ScheduledProcedure, error) {
	entries := make([]models.ScheduledProcedure, 0)
	if err := repo.database.
		Preload("Procedure").
		Where("user_id = ? AND scheduled_at >= ? AND scheduled_at < ?", userID, from.UTC(), before.UTC()).
		Order("scheduled_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *ScheduledProcedureRepository) FindByIDForUser(userID uint, scheduledID uint) (models.ScheduledProcedure, bool, error) {
	var entry models.ScheduledProcedure
	err := repo.database.
		Preload("Procedure").
		Where("id = ? AND user_id = ?", scheduledID, userID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ScheduledProcedure{}, false, nil
	}
	if err != nil {
		return models.ScheduledProcedure{}, false, err
	}
	return entry, true, nil
}

func (repo *ScheduledProcedureRepository) DeleteByIDForUser(userID uint, scheduledID uint) (bool, error) {
	result := repo.database.Where("id = ? AND user_id = ?", scheduledID, userID).Delete(&models.ScheduledProcedure{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
