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

// scoringParams maps the configured weights and caps onto the scoring engine
func scoringParams(cfg *config.ScoringConfig) scoring.Params {
	return scoring.Params{
		ThreatWeight:       cfg.ThreatWeight,
		ThreatCap:          cfg.ThreatCap,
		BiodiversityWeight: cfg.BiodiversityWeight,
		BiodiversityCap:    cfg.BiodiversityCap,
		AlertCap:           cfg.AlertCap,
		TrendBand:          cfg.TrendBand,
	}
}

// EcosystemHealthReport is the composite health snapshot served to clients
type EcosystemHealthReport struct {
	GeneratedAt       time.Time          `json:"generated_at"`
	WindowStart       time.Time          `json:"window_start"`
	WindowEnd         time.Time          `json:"window_end"`
	TotalSpecies       int                `json:"total_species"`
	ThreatenedSpecies  int                `json:"threatened_species"`
	ThreatenedPct      float64            `json:"threatened_pct"`
	RecentObservations int                `json:"recent_observations"`
	AvgBiodiversity    *float64           `json:"avg_biodiversity,omitempty"`
	ActiveAlerts       map[string]int     `json:"active_alerts"`
	Score              float64            `json:"score"`
	Deductions         scoring.Deductions `json:"deductions"`
	ObservationTrend   scoring.Trend      `json:"observation_trend"`
}

// RegionReport is the per-region view combining the latest assessment with
// the region's assessment history average
type RegionReport struct {
	Region          string                         `json:"region"`
	Latest          *models.BiodiversityAssessment `json:"latest,omitempty"`
	WindowAvg       *float64                       `json:"window_avg,omitempty"`
	AssessmentCount int                            `json:"assessment_count"`
}

// MetricsService computes ecosystem health metrics over sliding windows
type MetricsService struct {
	repos  *repository.RepositoryFactory
	cfg    *config.ScoringConfig
	engine *scoring.Engine
	logger *utils.Logger
}

// NewMetricsService creates a new metrics service
func NewMetricsService(repos *repository.RepositoryFactory, cfg *config.ScoringConfig, logger *utils.Logger) *MetricsService {
	return &MetricsService{
		repos:  repos,
		cfg:    cfg,
		engine: scoring.NewEngine(scoringParams(cfg)),
		logger: logger.Named("metrics_service"),
	}
}

// Engine exposes the shared scoring engine to sibling services
func (s *MetricsService) Engine() *scoring.Engine {
	return s.engine
}

// ComputeHealthReport assembles the composite ecosystem health score as of
// now. Regions with no assessment in the window simply contribute no
// biodiversity deduction; an empty catalog scores a clean 100.
func (s *MetricsService) ComputeHealthReport(now time.Time) (*EcosystemHealthReport, error) {
	window := scoring.Lookback(now, s.cfg.MetricsLookbackDays)

	total, err := s.repos.Species().Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count species: %w", err)
	}

	threatened, err := s.repos.Species().CountThreatened()
	if err != nil {
		return nil, fmt.Errorf("failed to count threatened species: %w", err)
	}

	assessments, err := s.repos.Biodiversity().ListInWindow(window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load biodiversity assessments: %w", err)
	}
	avgBiodiversity := scoring.AverageBiodiversity(assessments, window)

	alertCounts, err := s.repos.Alert().CountActiveBySeverity()
	if err != nil {
		return nil, fmt.Errorf("failed to count active alerts: %w", err)
	}

	observations, err := s.repos.Species().CountObservationsInWindow(window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to count observations: %w", err)
	}

	currentMonth := scoring.MonthOf(now)
	previousMonth := scoring.MonthOf(currentMonth.Start.AddDate(0, 0, -1))
	monthObs, err := s.repos.Species().CountObservationsInWindow(currentMonth.Start, currentMonth.End)
	if err != nil {
		return nil, fmt.Errorf("failed to count current month observations: %w", err)
	}
	prevMonthObs, err := s.repos.Species().CountObservationsInWindow(previousMonth.Start, previousMonth.End)
	if err != nil {
		return nil, fmt.Errorf("failed to count previous month observations: %w", err)
	}

	input := scoring.CompositeInput{
		TotalSpecies:      int(total),
		ThreatenedSpecies: int(threatened),
		Biodiversity:      avgBiodiversity,
		CriticalAlerts:    alertCounts[models.SeverityCritical],
		HighAlerts:        alertCounts[models.SeverityHigh],
		MediumAlerts:      alertCounts[models.SeverityMedium],
	}

	score, deductions := s.engine.CompositeScore(input)

	report := &EcosystemHealthReport{
		GeneratedAt:        now,
		WindowStart:        window.Start,
		WindowEnd:          window.End,
		TotalSpecies:       int(total),
		ThreatenedSpecies:  int(threatened),
		ThreatenedPct:      input.ThreatenedPct(),
		RecentObservations: int(observations),
		ActiveAlerts:       alertCounts,
		Score:              score,
		Deductions:         deductions,
		ObservationTrend:   s.engine.AnalyzeTrend(float64(monthObs), float64(prevMonthObs)),
	}
	if avgBiodiversity.Valid {
		v := avgBiodiversity.Value
		report.AvgBiodiversity = &v
	}

	s.logger.Info("Computed ecosystem health report",
		zap.Float64("score", score),
		zap.Int("total_species", report.TotalSpecies),
		zap.Int("threatened_species", report.ThreatenedSpecies),
	)

	return report, nil
}

// RegionReport builds the per-region biodiversity view. An unsurveyed region
// is a not-found condition rather than an empty report.
func (s *MetricsService) RegionReport(region string, now time.Time) (*RegionReport, error) {
	if region == "" {
		return nil, fmt.Errorf("%w: region name is required", utils.ErrValidation)
	}

	latest, err := s.repos.Biodiversity().LatestByRegion(region)
	if err != nil {
		return nil, err
	}

	window := scoring.Lookback(now, s.cfg.MetricsLookbackDays)
	history, err := s.repos.Biodiversity().ListByRegion(region, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load region history: %w", err)
	}

	avg := scoring.AverageBiodiversity(history, window)

	report := &RegionReport{
		Region:          region,
		Latest:          latest,
		AssessmentCount: len(history),
	}
	if avg.Valid {
		v := avg.Value
		report.WindowAvg = &v
	}

	return report, nil
}

// RecordAssessment validates and persists a biodiversity survey
func (s *MetricsService) RecordAssessment(assessment *models.BiodiversityAssessment) error {
	if assessment.RegionName == "" {
		return fmt.Errorf("%w: region name is required", utils.ErrValidation)
	}
	if assessment.BiodiversityScore != nil &&
		(*assessment.BiodiversityScore < 0 || *assessment.BiodiversityScore > 100) {
		return fmt.Errorf("%w: biodiversity score must be between 0 and 100", utils.ErrValidation)
	}
	if assessment.AssessedAt.IsZero() {
		assessment.AssessedAt = time.Now().UTC()
	}

	if err := s.repos.Biodiversity().Create(assessment); err != nil {
		return fmt.Errorf("failed to persist assessment: %w", err)
	}

	s.logger.Info("Recorded biodiversity assessment",
		zap.String("region", assessment.RegionName),
		zap.Time("assessed_at", assessment.AssessedAt),
	)
	return nil
}
