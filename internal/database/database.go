package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/config"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/database/migrations"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/queue"
)

// InitDB initializes the database connection with configuration
func InitDB(dbConfig config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dbConfig.URL), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdle)
	sqlDB.SetMaxOpenConns(dbConfig.MaxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := migrations.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// AutoMigrate creates the schema directly from the models. Versioned raw-SQL
// migrations are the source of truth in production; this is the path used by
// tests running against in-memory databases.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Agent{},
		&models.University{},
		&models.Program{},
		&models.ScholarshipConfig{},
		&models.Student{},
		&models.Application{},

		&models.CommissionRecord{},
		&models.ScholarshipPoint{},
		&models.ScholarshipAward{},

		&models.Wallet{},
		&models.WalletTransaction{},
		&models.Payout{},
		&models.PayoutHistory{},

		&queue.Job{},
	)
}
