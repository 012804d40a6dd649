package services

import (
	"fmt"
	"time"

	"github.com/marine-watch/backend/internal/config"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/scoring"
	"github.com/marine-watch/backend/internal/utils"
	"go.uber.org/zap"
)

// SustainabilityReport summarizes fishing sustainability over the metrics
// window, with a month-over-month activity trend
type SustainabilityReport struct {
	WindowStart       time.Time     `json:"window_start"`
	WindowEnd         time.Time     `json:"window_end"`
	Events            int           `json:"events"`
	TotalVolume       float64       `json:"total_volume"`
	AvgSustainability *float64      `json:"avg_sustainability,omitempty"`
	QuotaViolations   int           `json:"quota_violations"`
	AtRiskSpecies     int           `json:"at_risk_species"`
	ActivityTrend     scoring.Trend `json:"activity_trend"`
}

// RegionalTrend is the month-over-month catch activity trend of one fishing
// area
type RegionalTrend struct {
	Area          string        `json:"area"`
	CurrentMonth  int           `json:"current_month"`
	PreviousMonth int           `json:"previous_month"`
	Trend         scoring.Trend `json:"trend"`
}

// SustainabilityService tracks how fishing activity develops over time
type SustainabilityService struct {
	repos  *repository.RepositoryFactory
	cfg    *config.ScoringConfig
	engine *scoring.Engine
	logger *utils.Logger
}

// NewSustainabilityService creates a new sustainability service
func NewSustainabilityService(repos *repository.RepositoryFactory, cfg *config.ScoringConfig, logger *utils.Logger) *SustainabilityService {
	return &SustainabilityService{
		repos:  repos,
		cfg:    cfg,
		engine: scoring.NewEngine(scoringParams(cfg)),
		logger: logger.Named("sustainability_service"),
	}
}

// ComputeSustainabilityMetrics summarizes catches over the metrics window
// and compares activity against the equally sized preceding window
func (s *SustainabilityService) ComputeSustainabilityMetrics(now time.Time) (*SustainabilityReport, error) {
	window := scoring.Lookback(now, s.cfg.MetricsLookbackDays)
	previous := window.Previous()

	events, err := s.repos.Catch().ListInWindow(previous.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load catch events: %w", err)
	}

	current := scoring.SummarizeCatches(events, window)
	prior := scoring.SummarizeCatches(events, previous)

	report := &SustainabilityReport{
		WindowStart:   window.Start,
		WindowEnd:     window.End,
		Events:        current.Events,
		TotalVolume:   current.TotalVolume,
		ActivityTrend: s.engine.AnalyzeTrend(float64(current.Events), float64(prior.Events)),
	}
	if current.AvgSustainability.Valid {
		v := current.AvgSustainability.Value
		report.AvgSustainability = &v
	}

	// Per-species sustainability averages over the current window; events
	// without a quota or score stay out of the respective counts.
	type speciesAcc struct {
		sum   float64
		count int
	}
	perSpecies := make(map[uint]*speciesAcc)
	for i := range events {
		event := &events[i]
		if !window.Contains(event.CaughtAt) {
			continue
		}
		if event.QuotaLimit != nil && event.CatchAmount > *event.QuotaLimit {
			report.QuotaViolations++
		}
		if event.SustainabilityScore != nil {
			acc := perSpecies[event.SpeciesID]
			if acc == nil {
				acc = &speciesAcc{}
				perSpecies[event.SpeciesID] = acc
			}
			acc.sum += *event.SustainabilityScore
			acc.count++
		}
	}
	for _, acc := range perSpecies {
		if acc.sum/float64(acc.count) < sustainabilityRiskThreshold {
			report.AtRiskSpecies++
		}
	}

	s.logger.Debug("Computed sustainability metrics",
		zap.Int("events", report.Events),
		zap.String("trend", report.ActivityTrend.Direction),
	)

	return report, nil
}

// ComputeRegionalTrend compares one fishing area's catch count in the
// current calendar month against the previous month. A first month of
// activity reads as stable; rising activity reads as a declining trend.
func (s *SustainabilityService) ComputeRegionalTrend(area string, now time.Time) (*RegionalTrend, error) {
	if area == "" {
		return nil, fmt.Errorf("%w: fishing area is required", utils.ErrValidation)
	}

	currentMonth := scoring.MonthOf(now)
	previousMonth := scoring.MonthOf(currentMonth.Start.AddDate(0, 0, -1))

	current, err := s.repos.Catch().CountByAreaInWindow(area, currentMonth.Start, currentMonth.End)
	if err != nil {
		return nil, fmt.Errorf("failed to count current month catches: %w", err)
	}

	previous, err := s.repos.Catch().CountByAreaInWindow(area, previousMonth.Start, previousMonth.End)
	if err != nil {
		return nil, fmt.Errorf("failed to count previous month catches: %w", err)
	}

	return &RegionalTrend{
		Area:          area,
		CurrentMonth:  int(current),
		PreviousMonth: int(previous),
		Trend:         s.engine.AnalyzeTrend(float64(current), float64(previous)),
	}, nil
}
