package services

import (
	"fmt"
	"time"

	"github.com/marine-watch/backend/internal/config"
	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/scoring"
	"github.com/marine-watch/backend/internal/utils"
	"go.uber.org/zap"
)

// OceanConditions is a windowed summary of station readings
type OceanConditions struct {
	WindowStart time.Time           `json:"window_start"`
	WindowEnd   time.Time           `json:"window_end"`
	Summary     scoring.OceanSummary `json:"summary"`
}

// OceanService manages ocean measurement ingestion and summaries
type OceanService struct {
	repos         *repository.RepositoryFactory
	cfg           *config.ScoringConfig
	notifications *NotificationService
	logger        *utils.Logger
}

// NewOceanService creates a new ocean service
func NewOceanService(repos *repository.RepositoryFactory, cfg *config.ScoringConfig, notifications *NotificationService, logger *utils.Logger) *OceanService {
	return &OceanService{
		repos:         repos,
		cfg:           cfg,
		notifications: notifications,
		logger:        logger.Named("ocean_service"),
	}
}

// validateMeasurement rejects readings that cannot be real before they reach
// the store
func validateMeasurement(m *models.OceanMeasurement) error {
	if m.Latitude < -90 || m.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", utils.ErrValidation)
	}
	if m.Longitude < -180 || m.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", utils.ErrValidation)
	}
	if m.PHLevel != nil && (*m.PHLevel < 0 || *m.PHLevel > 14) {
		return fmt.Errorf("%w: ph level must be between 0 and 14", utils.ErrValidation)
	}
	if m.Salinity != nil && *m.Salinity < 0 {
		return fmt.Errorf("%w: salinity must not be negative", utils.ErrValidation)
	}
	return nil
}

// RecordMeasurement validates and persists one station reading
func (s *OceanService) RecordMeasurement(m *models.OceanMeasurement) error {
	if err := validateMeasurement(m); err != nil {
		return err
	}
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now().UTC()
	}

	if err := s.repos.Ocean().Create(m); err != nil {
		return fmt.Errorf("failed to persist measurement: %w", err)
	}

	s.logger.Debug("Recorded ocean measurement",
		zap.String("location", m.LocationName),
		zap.Float64("temperature", m.Temperature),
	)
	return nil
}

// Conditions summarizes readings over the metrics lookback window ending at
// now. An empty window yields a zero summary, not an error.
func (s *OceanService) Conditions(now time.Time) (*OceanConditions, error) {
	window := scoring.Lookback(now, s.cfg.MetricsLookbackDays)

	measurements, err := s.repos.Ocean().ListInWindow(window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load measurements: %w", err)
	}

	return &OceanConditions{
		WindowStart: window.Start,
		WindowEnd:   window.End,
		Summary:     scoring.SummarizeOcean(measurements, window),
	}, nil
}

// StationHistory retrieves a station's readings, newest first
func (s *OceanService) StationHistory(location string, limit int) ([]models.OceanMeasurement, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: location name is required", utils.ErrValidation)
	}
	return s.repos.Ocean().ListByLocation(location, limit)
}

// Latest retrieves the most recent readings across all stations
func (s *OceanService) Latest(limit int) ([]models.OceanMeasurement, error) {
	return s.repos.Ocean().Latest(limit)
}
