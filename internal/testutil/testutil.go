package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/marine-watch/backend/internal/config"
	"github.com/marine-watch/backend/internal/db"
	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/utils"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// dbCounter gives every test setup its own named in-memory database so tests
// never see each other's rows
var dbCounter atomic.Int64

// TestSetup contains utilities for testing
type TestSetup struct {
	Router   *gin.Engine
	DB       *db.Database
	Logger   *utils.Logger
	Config   *config.Config
	Cleanup  func()
	Requires *require.Assertions
}

// NewTestSetup creates a new test setup with an in-memory SQLite database
func NewTestSetup(t require.TestingT) *TestSetup {
	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	// Create a test logger directly using zap for tests
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.OutputPaths = []string{"stdout"}
	zapLogger, err := zapConfig.Build()
	if err != nil {
		require.FailNow(t, "Failed to create zap logger", err)
	}

	logger := &utils.Logger{
		Logger: zapLogger,
	}

	// Create test config
	cfg := &config.Config{
		Server: config.ServerConfig{
			Environment: "test",
		},
		Database: config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Scoring: config.ScoringConfig{
			ThreatWeight:         0.8,
			ThreatCap:            40,
			BiodiversityWeight:   0.3,
			BiodiversityCap:      30,
			AlertCap:             30,
			TrendBand:            10,
			MetricsLookbackDays:  30,
			PressureLookbackDays: 90,
			AlertLookbackDays:    90,
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "json",
		},
	}

	// Create an isolated in-memory SQLite database
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbCounter.Add(1))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		require.FailNow(t, "Failed to create in-memory database", err)
	}

	// Create database wrapper (compatible with the real db.Database)
	database := &db.Database{
		DB: gormDB,
	}

	// Create test router
	router := gin.New()
	router.Use(gin.Recovery())

	// Create cleanup function
	cleanup := func() {
		zapLogger.Sync()
		sqlDB, _ := gormDB.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}

	return &TestSetup{
		Router:   router,
		DB:       database,
		Logger:   logger,
		Config:   cfg,
		Cleanup:  cleanup,
		Requires: require.New(t),
	}
}

// SetupTestDatabase creates and migrates test database tables
func (ts *TestSetup) SetupTestDatabase(models ...interface{}) {
	err := ts.DB.DB.AutoMigrate(models...)
	ts.Requires.NoError(err, "Failed to migrate database")
}

// SetupMarineDatabase migrates the full schema, including the partial unique
// index that guards active alert deduplication
func (ts *TestSetup) SetupMarineDatabase() {
	ts.SetupTestDatabase(
		&models.Species{},
		&models.SpeciesObservation{},
		&models.CatchEvent{},
		&models.BiodiversityAssessment{},
		&models.OceanMeasurement{},
		&models.Alert{},
	)

	err := ts.DB.DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_active_dedup
		 ON alerts (alert_type, location, subject_key)
		 WHERE is_active`,
	).Error
	ts.Requires.NoError(err, "Failed to create active alert dedup index")
}

// ExecuteRequest executes a test request and returns the response
func (ts *TestSetup) ExecuteRequest(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	// Create request
	var reqBody []byte
	var err error

	if body != nil {
		reqBody, err = json.Marshal(body)
		ts.Requires.NoError(err, "Failed to marshal request body")
	}

	req, err := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	ts.Requires.NoError(err, "Failed to create request")

	// Set content type if request has body
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Set additional headers
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	// Execute request
	resp := httptest.NewRecorder()
	ts.Router.ServeHTTP(resp, req)

	return resp
}

// ParseResponse parses the JSON response into the provided struct
func (ts *TestSetup) ParseResponse(response *httptest.ResponseRecorder, target interface{}) {
	err := json.Unmarshal(response.Body.Bytes(), target)
	ts.Requires.NoError(err, "Failed to parse response body: %s", response.Body.String())
}

// SeedSpecies creates a species record for testing
func (ts *TestSetup) SeedSpecies(scientificName, threatLevel string) *models.Species {
	species := &models.Species{
		ScientificName: scientificName,
		CommonName:     scientificName,
		SpeciesType:    "fish",
		ThreatLevel:    threatLevel,
	}
	result := ts.DB.DB.Create(species)
	ts.Requires.NoError(result.Error, "Failed to create test species")
	return species
}
