package db

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the shared connection used by services and handlers
var DB *gorm.DB

// Initialize opens the sqlite database in WAL mode. TranslateError is
// enabled so tag uniqueness violations surface as gorm.ErrDuplicatedKey
// for the creation retry loop.
func Initialize(dbPath string, environment string) error {
	var err error

	logLevel := logger.Info
	if environment == "production" {
		logLevel = logger.Warn
	}

	dsn := dbPath + "?_journal_mode=WAL"

	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})

	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	log.Printf("Database ready at %s (WAL)", dbPath)
	return nil
}

// AutoMigrate migrates the given asset models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Println("Schema migration completed")
	return nil
}

// Close closes the underlying connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
