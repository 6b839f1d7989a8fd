package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/terraincognita07/glowlog/internal/models"
)

var catalogProcedures = []models.Procedure{
	{Name: "Laser toning", Category: "laser", Description: "Low-energy laser for pigmentation and tone.", Keywords: "laser,toning,pigmentation,melasma,brightening", DowntimeMinDays: 0, DowntimeMaxDays: 2},
	{Name: "Fractional CO2 laser", Category: "laser", Description: "Ablative resurfacing for scars and texture.", Keywords: "co2,fraxel,resurfacing,scars,pores", DowntimeMinDays: 5, DowntimeMaxDays: 10},
	{Name: "IPL photofacial", Category: "laser", Description: "Broadband light for redness and sun damage.", Keywords: "ipl,photofacial,redness,freckles", DowntimeMinDays: 1, DowntimeMaxDays: 3},
	{Name: "Botox", Category: "injection", Description: "Botulinum toxin for expression lines.", Keywords: "botox,botulinum,wrinkles,jaw", DowntimeMinDays: 0, DowntimeMaxDays: 1},
	{Name: "Hyaluronic acid filler", Category: "injection", Description: "Volume restoration with hyaluronic acid.", Keywords: "filler,hyaluronic,volume,lips,nasolabial", DowntimeMinDays: 2, DowntimeMaxDays: 7},
	{Name: "Skin booster", Category: "injection", Description: "Micro-injections for hydration.", Keywords: "booster,rejuran,hydration,dryness", DowntimeMinDays: 1, DowntimeMaxDays: 3},
	{Name: "Chemical peel", Category: "peeling", Description: "Acid peel for acne and texture.", Keywords: "peel,aha,bha,acne,texture", DowntimeMinDays: 3, DowntimeMaxDays: 7},
	{Name: "Aqua peel", Category: "peeling", Description: "Hydradermabrasion cleansing.", Keywords: "aqua,hydrafacial,pores,cleansing", DowntimeMinDays: 0, DowntimeMaxDays: 0},
	{Name: "HIFU lifting", Category: "lifting", Description: "Focused ultrasound for sagging.", Keywords: "hifu,ulthera,lifting,sagging", DowntimeMinDays: 0, DowntimeMaxDays: 3},
	{Name: "Thread lift", Category: "lifting", Description: "Absorbable threads for contour.", Keywords: "thread,lift,contour,sagging", DowntimeMinDays: 5, DowntimeMaxDays: 14},
	{Name: "Microneedling", Category: "needling", Description: "Collagen induction therapy.", Keywords: "microneedling,dermapen,scars,pores", DowntimeMinDays: 2, DowntimeMaxDays: 5},
}

var catalogChallenges = []models.Challenge{
	{Title: "Drink 2L of water", Description: "Log two litres of water every day.", Category: "hydration", DurationDays: 14, PointsPerCheckIn: 10},
	{Title: "Sunscreen every morning", Description: "Apply SPF 50 before leaving home.", Category: "protection", DurationDays: 30, PointsPerCheckIn: 10},
	{Title: "Sleep before midnight", Description: "Be in bed by 23:30.", Category: "lifestyle", DurationDays: 21, PointsPerCheckIn: 15},
	{Title: "No touching your face", Description: "Keep hands away from healing skin.", Category: "recovery", DurationDays: 7, PointsPerCheckIn: 10},
	{Title: "Gentle cleanse only", Description: "Skip scrubs and actives during downtime.", Category: "recovery", DurationDays: 7, PointsPerCheckIn: 10},
	{Title: "Evening moisturizer", Description: "Moisturize before bed every night.", Category: "hydration", DurationDays: 14, PointsPerCheckIn: 5},
}

// SeedCatalog inserts missing catalog rows. Existing rows are left as they are.
func SeedCatalog(database *gorm.DB) error {
	procedures := append([]models.Procedure(nil), catalogProcedures...)
	if err := database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&procedures).Error; err != nil {
		return fmt.Errorf("seed procedures: %w", err)
	}

	challenges := append([]models.Challenge(nil), catalogChallenges...)
	if err := database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "title"}},
		DoNothing: true,
	}).Create(&challenges).Error; err != nil {
		return fmt.Errorf("seed challenges: %w", err)
	}
	return nil
}
