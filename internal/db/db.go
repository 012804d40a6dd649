package db

import (
	"fmt"
	"time"

	"github.com/marine-watch/backend/internal/config"
	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/utils"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps a GORM DB connection with additional functionality
type Database struct {
	*gorm.DB
	logger *utils.Logger
	config *config.DatabaseConfig
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.DatabaseConfig, log *utils.Logger) (*Database, error) {
	dbLogger := log.Named("database")

	// Configure GORM logger
	gormLogger := logger.New(
		&logAdapter{logger: dbLogger},
		logger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// Configure GORM
	gormConfig := &gorm.Config{
		Logger:                 gormLogger,
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	}

	// Connect to database
	dbLogger.Info("Connecting to database",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("dbname", cfg.DBName),
		zap.String("user", cfg.User),
	)

	dsn := cfg.GetDSN()
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Create database wrapper
	database := &Database{
		DB:     db,
		logger: dbLogger,
		config: cfg,
	}

	// Verify connection
	if err := database.VerifyConnection(); err != nil {
		return nil, err
	}

	return database, nil
}

// VerifyConnection checks if the database connection is working
func (db *Database) VerifyConnection() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB instance: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	db.logger.Info("Successfully connected to database")
	return nil
}

// AutoMigrate runs auto migration for the given models
func (db *Database) AutoMigrate() error {
	db.logger.Info("Running auto migrations")

	// Auto migrate models
	if err := db.DB.AutoMigrate(
		&models.Species{},
		&models.SpeciesObservation{},
		&models.CatchEvent{},
		&models.BiodiversityAssessment{},
		&models.OceanMeasurement{},
		&models.Alert{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}

	// Enforce at most one active alert per (type, location, subject) even
	// under concurrent rule evaluation runs
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_active_dedup
		 ON alerts (alert_type, location, subject_key)
		 WHERE is_active`,
	).Error; err != nil {
		return fmt.Errorf("failed to create active alert dedup index: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *Database) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	return sqlDB.Close()
}

// logAdapter adapts our zap-based logger to the GORM logger interface
type logAdapter struct {
	logger *utils.Logger
}

// Printf implements the GORM logger writer interface
func (l *logAdapter) Printf(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}
