package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/terraincognita07/glowlog/internal/models"
)

const (
	postgresMaxOpenConns    = 20
	postgresMaxIdleConns    = 5
	postgresConnMaxLifetime = 30 * time.Minute
)

// OpenPostgres connects through lib/pq and hands the pool to gorm. The schema
// is reconciled with AutoMigrate since the embedded SQL targets sqlite.
func OpenPostgres(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB.SetMaxOpenConns(postgresMaxOpenConns)
	sqlDB.SetMaxIdleConns(postgresMaxIdleConns)
	sqlDB.SetConnMaxLifetime(postgresConnMaxLifetime)

	database, err := OpenPostgresConn(sqlDB, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if err := autoMigratePostgres(database); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return database, nil
}

func OpenPostgresConn(conn *sql.DB, logger *zap.Logger) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), newGormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}
	return database, nil
}

func autoMigratePostgres(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.User{},
		&models.Procedure{},
		&models.ScheduledProcedure{},
		&models.Challenge{},
		&models.UserChallenge{},
		&models.ChallengeCheckIn{},
		&models.Recommendation{},
	); err != nil {
		return fmt.Errorf("auto migrate postgres: %w", err)
	}
	if err := database.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_normalized ON users (lower(trim(email)))`,
	).Error; err != nil {
		return fmt.Errorf("create normalized email index: %w", err)
	}
	return nil
}
