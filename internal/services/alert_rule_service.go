package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/marine-watch/backend/internal/config"
	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/kafka"
	"github.com/marine-watch/backend/internal/scoring"
	"github.com/marine-watch/backend/internal/utils"
	"go.uber.org/zap"
)

// Rule thresholds. These come from conservation policy and are fixed, unlike
// the scoring weights which are tunable per deployment.
const (
	biodiversityRiskThreshold     = 40.0
	biodiversityCriticalThreshold = 25.0
	threatRatioThreshold          = 0.3
	threatRatioCriticalThreshold  = 0.5
	overfishingQuotaFactor        = 1.2
	overfishingSevereQuotaFactor  = 1.5
	sustainabilityRiskThreshold   = 40.0
	sustainabilityCriticalLevel   = 25.0
)

// RuleRunResult reports what one evaluation pass produced
type RuleRunResult struct {
	EvaluatedAt     time.Time      `json:"evaluated_at"`
	Created         []models.Alert `json:"created"`
	SkippedExisting int            `json:"skipped_existing"`
}

// AlertRuleService evaluates the alert rules against the current data and
// raises deduplicated alerts
type AlertRuleService struct {
	repos         *repository.RepositoryFactory
	cfg           *config.ScoringConfig
	kafkaManager  *kafka.Manager
	notifications *NotificationService
	logger        *utils.Logger
}

// NewAlertRuleService creates a new alert rule service. The Kafka manager
// and notification service may be nil; alerts are then only persisted.
func NewAlertRuleService(
	repos *repository.RepositoryFactory,
	cfg *config.ScoringConfig,
	kafkaManager *kafka.Manager,
	notifications *NotificationService,
	logger *utils.Logger,
) *AlertRuleService {
	return &AlertRuleService{
		repos:         repos,
		cfg:           cfg,
		kafkaManager:  kafkaManager,
		notifications: notifications,
		logger:        logger.Named("alert_rule_service"),
	}
}

var severityRank = map[string]int{
	models.SeverityLow:      0,
	models.SeverityMedium:   1,
	models.SeverityHigh:     2,
	models.SeverityCritical: 3,
}

// RunAlertRules evaluates every rule as of now. Candidates whose
// (type, location, subject) triple already has an active alert are skipped;
// the rest are inserted in a single transaction so a run is either fully
// persisted or not at all. Publication to Kafka and websocket clients
// happens only after the commit.
func (s *AlertRuleService) RunAlertRules(now time.Time) (*RuleRunResult, error) {
	var candidates []models.Alert

	biodiversityAlerts, err := s.evaluateBiodiversityRisk()
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, biodiversityAlerts...)

	threatAlert, err := s.evaluateSpeciesThreat()
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, threatAlert...)

	window := scoring.Lookback(now, s.cfg.AlertLookbackDays)
	events, err := s.repos.Catch().ListInWindow(window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load catch events: %w", err)
	}

	candidates = append(candidates, s.evaluateOverfishing(events, window)...)
	candidates = append(candidates, s.evaluateSustainabilityRisk(events)...)

	// Collapse in-run duplicates, keeping the worst severity per triple
	candidates = dedupeCandidates(candidates)

	result := &RuleRunResult{EvaluatedAt: now}
	var toCreate []models.Alert
	for _, candidate := range candidates {
		_, err := s.repos.Alert().FindActive(candidate.AlertType, candidate.Location, candidate.SubjectKey)
		if err == nil {
			result.SkippedExisting++
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to check for active alert: %w", err)
		}
		toCreate = append(toCreate, candidate)
	}

	if len(toCreate) > 0 {
		if err := s.repos.Alert().CreateBatch(toCreate); err != nil {
			return nil, fmt.Errorf("failed to persist alert batch: %w", err)
		}
	}
	result.Created = toCreate

	s.publish(toCreate)

	s.logger.Info("Alert rule run finished",
		zap.Int("created", len(result.Created)),
		zap.Int("skipped_existing", result.SkippedExisting),
	)

	return result, nil
}

// evaluateBiodiversityRisk raises an alert for every region whose latest
// scored assessment sits below the risk threshold. Unscored assessments are
// skipped; missing data is not risk data.
func (s *AlertRuleService) evaluateBiodiversityRisk() ([]models.Alert, error) {
	latest, err := s.repos.Biodiversity().LatestPerRegion()
	if err != nil {
		return nil, fmt.Errorf("failed to load latest assessments: %w", err)
	}

	var alerts []models.Alert
	for i := range latest {
		assessment := &latest[i]
		if assessment.BiodiversityScore == nil {
			continue
		}
		score := *assessment.BiodiversityScore
		if score >= biodiversityRiskThreshold {
			continue
		}

		severity := models.SeverityHigh
		if score < biodiversityCriticalThreshold {
			severity = models.SeverityCritical
		}

		alerts = append(alerts, models.Alert{
			AlertType: models.AlertBiodiversityRisk,
			Severity:  severity,
			Title:     fmt.Sprintf("Biodiversity risk: %s", assessment.RegionName),
			Description: fmt.Sprintf("Latest assessment scored %.1f, below the risk threshold of %.0f",
				score, biodiversityRiskThreshold),
			Location:  assessment.RegionName,
			Latitude:  assessment.Latitude,
			Longitude: assessment.Longitude,
			IsActive:  true,
		})
	}
	return alerts, nil
}

// evaluateSpeciesThreat raises a single global alert when the threatened
// share of the catalog exceeds the threshold
func (s *AlertRuleService) evaluateSpeciesThreat() ([]models.Alert, error) {
	total, err := s.repos.Species().Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count species: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	threatened, err := s.repos.Species().CountThreatened()
	if err != nil {
		return nil, fmt.Errorf("failed to count threatened species: %w", err)
	}

	ratio := float64(threatened) / float64(total)
	if ratio <= threatRatioThreshold {
		return nil, nil
	}

	severity := models.SeverityHigh
	if ratio > threatRatioCriticalThreshold {
		severity = models.SeverityCritical
	}

	return []models.Alert{{
		AlertType: models.AlertSpeciesThreat,
		Severity:  severity,
		Title:     "Elevated share of threatened species",
		Description: fmt.Sprintf("%d of %d catalogued species are at high or critical threat (%.0f%%)",
			threatened, total, ratio*100),
		Location: "Global",
		IsActive: true,
	}}, nil
}

// evaluateOverfishing raises an alert per (species, area) whose summed catch
// over the window exceeds the average quota by more than the allowed factor.
// Sub-quota hauls add up; groups where no event carries a quota are skipped,
// since there is no baseline to compare against.
func (s *AlertRuleService) evaluateOverfishing(events []models.CatchEvent, window scoring.Window) []models.Alert {
	groups := make(map[string][]models.CatchEvent)
	for i := range events {
		key := events[i].FishingArea + "\x00" + events[i].Species.ScientificName
		groups[key] = append(groups[key], events[i])
	}

	var alerts []models.Alert
	for _, group := range groups {
		summary := scoring.SummarizeCatches(group, window)
		if !summary.AvgQuota.Valid {
			continue
		}
		avgQuota := summary.AvgQuota.Value
		if summary.TotalVolume <= avgQuota*overfishingQuotaFactor {
			continue
		}

		severity := models.SeverityMedium
		if summary.TotalVolume > avgQuota*overfishingSevereQuotaFactor {
			severity = models.SeverityHigh
		}

		// events arrive oldest first, so the last one carries the freshest
		// coordinates
		latest := &group[len(group)-1]
		alerts = append(alerts, models.Alert{
			AlertType: models.AlertOverfishing,
			Severity:  severity,
			Title:     fmt.Sprintf("Overfishing: %s", latest.Species.ScientificName),
			Description: fmt.Sprintf("Total catch of %.1ft in %s exceeds the average quota of %.1ft",
				summary.TotalVolume, latest.FishingArea, avgQuota),
			Location:   latest.FishingArea,
			SubjectKey: latest.Species.ScientificName,
			Latitude:   latest.Latitude,
			Longitude:  latest.Longitude,
			IsActive:   true,
		})
	}
	return alerts
}

// evaluateSustainabilityRisk raises an alert per (species, area) whose
// assessed catches average below the sustainability threshold. Events
// without an assessment contribute nothing.
func (s *AlertRuleService) evaluateSustainabilityRisk(events []models.CatchEvent) []models.Alert {
	type acc struct {
		species string
		area    string
		sum     float64
		count   int
	}
	byKey := make(map[string]*acc)

	for i := range events {
		event := &events[i]
		if event.SustainabilityScore == nil {
			continue
		}
		key := event.FishingArea + "\x00" + event.Species.ScientificName
		a, ok := byKey[key]
		if !ok {
			a = &acc{species: event.Species.ScientificName, area: event.FishingArea}
			byKey[key] = a
		}
		a.sum += *event.SustainabilityScore
		a.count++
	}

	var alerts []models.Alert
	for _, a := range byKey {
		avg := a.sum / float64(a.count)
		if avg >= sustainabilityRiskThreshold {
			continue
		}

		severity := models.SeverityHigh
		if avg < sustainabilityCriticalLevel {
			severity = models.SeverityCritical
		}

		alerts = append(alerts, models.Alert{
			AlertType: models.AlertSustainabilityRisk,
			Severity:  severity,
			Title:     fmt.Sprintf("Unsustainable fishing: %s", a.species),
			Description: fmt.Sprintf("Assessed catches of %s in %s average a sustainability score of %.1f",
				a.species, a.area, avg),
			Location:   a.area,
			SubjectKey: a.species,
			IsActive:   true,
		})
	}
	return alerts
}

// dedupeCandidates collapses candidates sharing a (type, location, subject)
// triple, keeping the worst severity, and orders the result
// deterministically
func dedupeCandidates(candidates []models.Alert) []models.Alert {
	byKey := make(map[string]models.Alert)
	for _, candidate := range candidates {
		key := candidate.AlertType + "\x00" + candidate.Location + "\x00" + candidate.SubjectKey
		if existing, ok := byKey[key]; ok && severityRank[existing.Severity] >= severityRank[candidate.Severity] {
			continue
		}
		byKey[key] = candidate
	}

	out := make([]models.Alert, 0, len(byKey))
	for _, alert := range byKey {
		out = append(out, alert)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AlertType != out[j].AlertType {
			return out[i].AlertType < out[j].AlertType
		}
		if out[i].Location != out[j].Location {
			return out[i].Location < out[j].Location
		}
		return out[i].SubjectKey < out[j].SubjectKey
	})
	return out
}

// publish fans persisted alerts out to Kafka and websocket subscribers
func (s *AlertRuleService) publish(alerts []models.Alert) {
	for i := range alerts {
		alert := &alerts[i]
		if s.kafkaManager != nil {
			if err := s.kafkaManager.ProduceAlert(alert.Location, alert); err != nil {
				s.logger.Error("Failed to publish alert to Kafka",
					zap.String("alert_type", alert.AlertType),
					zap.String("location", alert.Location),
					zap.Error(err),
				)
			}
		}
		if s.notifications != nil {
			s.notifications.NotifyTopic(TopicAlertsFeed, NotificationTypeAlert, alert)
		}
	}
}

// ResolveAlert resolves an active alert and notifies subscribers
func (s *AlertRuleService) ResolveAlert(id uint) (*models.Alert, error) {
	alert, err := s.repos.Alert().Resolve(id)
	if err != nil {
		return nil, err
	}

	if s.notifications != nil {
		s.notifications.NotifyTopic(TopicAlertsFeed, NotificationTypeAlert, alert)
	}

	s.logger.Info("Alert resolved",
		zap.Uint("id", alert.ID),
		zap.String("alert_type", alert.AlertType),
	)
	return alert, nil
}

// ListAlerts retrieves alerts matching the filter
func (s *AlertRuleService) ListAlerts(filter repository.AlertFilter, offset, limit int) ([]models.Alert, int64, error) {
	return s.repos.Alert().List(filter, offset, limit)
}
