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

// PressureReport ranks every fishing area by classified pressure
type PressureReport struct {
	WindowStart time.Time               `json:"window_start"`
	WindowEnd   time.Time               `json:"window_end"`
	Areas       []scoring.PressureScore `json:"areas"`
}

// FisheriesService manages catch reporting and fishing pressure analysis
type FisheriesService struct {
	repos  *repository.RepositoryFactory
	cfg    *config.ScoringConfig
	engine *scoring.Engine
	logger *utils.Logger
}

// NewFisheriesService creates a new fisheries service
func NewFisheriesService(repos *repository.RepositoryFactory, cfg *config.ScoringConfig, logger *utils.Logger) *FisheriesService {
	return &FisheriesService{
		repos:  repos,
		cfg:    cfg,
		engine: scoring.NewEngine(scoringParams(cfg)),
		logger: logger.Named("fisheries_service"),
	}
}

// ReportCatch validates and persists a catch event
func (s *FisheriesService) ReportCatch(event *models.CatchEvent) error {
	if event.SpeciesID == 0 {
		return fmt.Errorf("%w: species is required", utils.ErrValidation)
	}
	if event.CatchAmount <= 0 {
		return fmt.Errorf("%w: catch amount must be positive", utils.ErrValidation)
	}
	if event.FishingArea == "" {
		return fmt.Errorf("%w: fishing area is required", utils.ErrValidation)
	}
	if event.QuotaLimit != nil && *event.QuotaLimit < 0 {
		return fmt.Errorf("%w: quota limit must not be negative", utils.ErrValidation)
	}
	if event.SustainabilityScore != nil &&
		(*event.SustainabilityScore < 0 || *event.SustainabilityScore > 100) {
		return fmt.Errorf("%w: sustainability score must be between 0 and 100", utils.ErrValidation)
	}
	if event.CaughtAt.IsZero() {
		event.CaughtAt = time.Now().UTC()
	}

	if _, err := s.repos.Species().GetByID(event.SpeciesID); err != nil {
		return fmt.Errorf("failed to resolve species %d: %w", event.SpeciesID, err)
	}

	if err := s.repos.Catch().Create(event); err != nil {
		return fmt.Errorf("failed to persist catch event: %w", err)
	}

	s.logger.Debug("Recorded catch event",
		zap.Uint("species_id", event.SpeciesID),
		zap.String("area", event.FishingArea),
		zap.Float64("amount", event.CatchAmount),
	)
	return nil
}

// EvaluateFishingPressure classifies every fishing area over the pressure
// lookback window and ranks them worst first. Areas with no activity in the
// window score zero and rank last.
func (s *FisheriesService) EvaluateFishingPressure(now time.Time) (*PressureReport, error) {
	window := scoring.Lookback(now, s.cfg.PressureLookbackDays)

	areas, err := s.repos.Catch().DistinctAreas()
	if err != nil {
		return nil, fmt.Errorf("failed to list fishing areas: %w", err)
	}

	inputs := make([]scoring.PressureInput, 0, len(areas))
	for _, area := range areas {
		events, err := s.repos.Catch().ListByAreaInWindow(area, window.Start, window.End)
		if err != nil {
			return nil, fmt.Errorf("failed to load catches for area %s: %w", area, err)
		}

		summary := scoring.SummarizeCatches(events, window)
		inputs = append(inputs, scoring.PressureInput{
			Area:              area,
			CatchCount:        summary.Events,
			TotalVolume:       summary.TotalVolume,
			AvgSustainability: summary.AvgSustainability,
		})
	}

	return &PressureReport{
		WindowStart: window.Start,
		WindowEnd:   window.End,
		Areas:       s.engine.RankPressure(inputs),
	}, nil
}

// CatchBySpecies ranks species by total catch volume over the metrics window
func (s *FisheriesService) CatchBySpecies(now time.Time, limit int) ([]repository.SpeciesCatchTotal, error) {
	window := scoring.Lookback(now, s.cfg.MetricsLookbackDays)

	totals, err := s.repos.Catch().TotalsBySpecies(window.Start, window.End, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank species by catch: %w", err)
	}
	return totals, nil
}
