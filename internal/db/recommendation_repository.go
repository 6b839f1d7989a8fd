package db

import (
	"gorm.io/gorm"

	"github.com/terraincognita07/glowlog/internal/models"
)

// keptRecommendationBatches bounds how many past batches a user keeps.
const keptRecommendationBatches = 3

type RecommendationRepository struct {
	database *gorm.DB
}

func NewRecommendationRepository(database *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{database: database}
}

func (repo *RecommendationRepository) SaveBatch(items []models.Recommendation) error {
	if len(items) == 0 {
		return nil
	}
	userID := items[0].UserID
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		var batches []string
		if err := tx.Model(&models.Recommendation{}).
			Where("user_id = ?", userID).
			Group("batch_id").
			Order("MAX(id) DESC").
			Pluck("batch_id", &batches).Error; err != nil {
			return err
		}
		if len(batches) <= keptRecommendationBatches {
			return nil
		}
		stale := batches[keptRecommendationBatches:]
		return tx.Where("user_id = ? AND batch_id IN ?", userID, stale).Delete(&models.Recommendation{}).Error
	})
}

func (repo *RecommendationRepository) LatestBatch(userID uint) ([]models.Recommendation, error) {
	var latest models.Recommendation
	result := repo.database.Where("user_id = ?", userID).Order("id DESC").Limit(1).Find(&latest)
	if result.Error != nil {
		return nil, result.Error
	}
	items := make([]models.Recommendation, 0)
	if result.RowsAffected == 0 {
		return items, nil
	}
	if err := repo.database.
		Where("user_id = ? AND batch_id = ?", userID, latest.BatchID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
