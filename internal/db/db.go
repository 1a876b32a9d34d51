package db

import (
	"fmt"
	"time"

	"github.com/windoze95/saltybytes-discover/internal/config"
	"github.com/windoze95/saltybytes-discover/internal/logger"
	"github.com/windoze95/saltybytes-discover/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// New creates a new database connection, or returns nil without error
// when DATABASE_URL is not configured.
func New(cfg *config.Config) (*gorm.DB, error) {
	if cfg.EnvVars.DatabaseUrl == "" {
		return nil, nil
	}
	return connectToDatabaseWithRetry(cfg.EnvVars.DatabaseUrl, time.Minute)
}

// connectToDatabaseWithRetry connects to the database and retries until
// the deadline passes.
func connectToDatabaseWithRetry(databaseURL string, deadline time.Duration) (*gorm.DB, error) {
	logger.Get().Info("connecting to database")
	var database *gorm.DB
	var err error

	start := time.Now()
	for {
		database, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			break
		}
		if time.Since(start) > deadline {
			return nil, fmt.Errorf("could not connect to database after %s: %w", deadline, err)
		}
		logger.Get().Warn("could not connect to database, retrying...", zap.Error(err))
		time.Sleep(5 * time.Second)
	}

	if err := database.AutoMigrate(&models.SearchEvent{}); err != nil {
		return nil, fmt.Errorf("failed to migrate search events: %w", err)
	}

	return database, nil
}
