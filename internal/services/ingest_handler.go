package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/kafka"
	"github.com/marine-watch/backend/internal/utils"
	"go.uber.org/zap"
)

// oceanMeasurementPayload is the wire format of a station reading
type oceanMeasurementPayload struct {
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Temperature      float64  `json:"temperature"`
	Salinity         *float64 `json:"salinity,omitempty"`
	PHLevel          *float64 `json:"ph_level,omitempty"`
	OxygenLevel      *float64 `json:"oxygen_level,omitempty"`
	CurrentSpeed     *float64 `json:"current_speed,omitempty"`
	CurrentDirection *float64 `json:"current_direction,omitempty"`
	Depth            *float64 `json:"depth,omitempty"`
	LocationName     string   `json:"location_name"`
	RecordedAt       string   `json:"recorded_at,omitempty"`
}

// catchReportPayload is the wire format of a catch report
type catchReportPayload struct {
	ScientificName      string   `json:"scientific_name"`
	CommonName          string   `json:"common_name,omitempty"`
	SpeciesType         string   `json:"species_type,omitempty"`
	CatchAmount         float64  `json:"catch_amount"`
	FishingArea         string   `json:"fishing_area"`
	Latitude            *float64 `json:"latitude,omitempty"`
	Longitude           *float64 `json:"longitude,omitempty"`
	FishingMethod       string   `json:"fishing_method,omitempty"`
	VesselType          string   `json:"vessel_type,omitempty"`
	QuotaLimit          *float64 `json:"quota_limit,omitempty"`
	SustainabilityScore *float64 `json:"sustainability_score,omitempty"`
	CaughtAt            string   `json:"caught_at,omitempty"`
}

// IngestHandler consumes measurement and catch-report topics and persists
// their payloads. Malformed payloads fail the handler so the consumer routes
// them to the DLQ.
type IngestHandler struct {
	logger       *utils.Logger
	kafkaManager *kafka.Manager
	repos        *repository.RepositoryFactory
	ocean        *OceanService
	fisheries    *FisheriesService
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(
	logger *utils.Logger,
	kafkaManager *kafka.Manager,
	repos *repository.RepositoryFactory,
	ocean *OceanService,
	fisheries *FisheriesService,
) *IngestHandler {
	return &IngestHandler{
		logger:       logger.Named("ingest_handler"),
		kafkaManager: kafkaManager,
		repos:        repos,
		ocean:        ocean,
		fisheries:    fisheries,
	}
}

// Initialize registers the topic handlers on the Kafka manager
func (h *IngestHandler) Initialize() error {
	if err := h.kafkaManager.RegisterOceanMeasurementHandler("ingest", h.handleOceanMeasurement); err != nil {
		return fmt.Errorf("failed to register ocean measurement handler: %w", err)
	}

	if err := h.kafkaManager.RegisterCatchReportHandler("ingest", h.handleCatchReport); err != nil {
		return fmt.Errorf("failed to register catch report handler: %w", err)
	}

	h.logger.Info("Ingest handlers registered")
	return nil
}

// handleOceanMeasurement persists one station reading
func (h *IngestHandler) handleOceanMeasurement(eventID, source string, timestamp time.Time, payload json.RawMessage) error {
	var p oceanMeasurementPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to unmarshal ocean measurement: %w", err)
	}

	recordedAt := timestamp
	if p.RecordedAt != "" {
		parsed, err := time.Parse(time.RFC3339, p.RecordedAt)
		if err != nil {
			return fmt.Errorf("failed to parse recorded_at: %w", err)
		}
		recordedAt = parsed
	}

	location := p.LocationName
	if location == "" {
		location = source
	}

	measurement := &models.OceanMeasurement{
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		Temperature:      p.Temperature,
		Salinity:         p.Salinity,
		PHLevel:          p.PHLevel,
		OxygenLevel:      p.OxygenLevel,
		CurrentSpeed:     p.CurrentSpeed,
		CurrentDirection: p.CurrentDirection,
		Depth:            p.Depth,
		LocationName:     location,
		RecordedAt:       recordedAt,
	}

	if err := h.ocean.RecordMeasurement(measurement); err != nil {
		return fmt.Errorf("failed to record measurement %s: %w", eventID, err)
	}

	h.logger.Debug("Ingested ocean measurement",
		zap.String("event_id", eventID),
		zap.String("location", location),
	)
	return nil
}

// handleCatchReport resolves the species by scientific name and persists the
// catch event
func (h *IngestHandler) handleCatchReport(eventID, source string, timestamp time.Time, payload json.RawMessage) error {
	var p catchReportPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to unmarshal catch report: %w", err)
	}

	if p.ScientificName == "" {
		return fmt.Errorf("%w: catch report %s has no scientific name", utils.ErrValidation, eventID)
	}

	// A known species keeps its catalog data; only unknown ones get a stub
	// entry at low threat
	species, err := h.repos.Species().GetByScientificName(p.ScientificName)
	if errors.Is(err, repository.ErrNotFound) {
		species = &models.Species{
			ScientificName: p.ScientificName,
			CommonName:     p.CommonName,
			SpeciesType:    p.SpeciesType,
			ThreatLevel:    models.ThreatLow,
		}
		if err := h.repos.Species().Create(species); err != nil {
			return fmt.Errorf("failed to catalog species %s: %w", p.ScientificName, err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to resolve species %s: %w", p.ScientificName, err)
	}

	caughtAt := timestamp
	if p.CaughtAt != "" {
		parsed, err := time.Parse(time.RFC3339, p.CaughtAt)
		if err != nil {
			return fmt.Errorf("failed to parse caught_at: %w", err)
		}
		caughtAt = parsed
	}

	area := p.FishingArea
	if area == "" {
		area = source
	}

	event := &models.CatchEvent{
		SpeciesID:           species.ID,
		CatchAmount:         p.CatchAmount,
		FishingArea:         area,
		Latitude:            p.Latitude,
		Longitude:           p.Longitude,
		FishingMethod:       p.FishingMethod,
		VesselType:          p.VesselType,
		QuotaLimit:          p.QuotaLimit,
		SustainabilityScore: p.SustainabilityScore,
		CaughtAt:            caughtAt,
	}

	if err := h.fisheries.ReportCatch(event); err != nil {
		return fmt.Errorf("failed to record catch report %s: %w", eventID, err)
	}

	h.logger.Debug("Ingested catch report",
		zap.String("event_id", eventID),
		zap.String("area", area),
		zap.String("species", p.ScientificName),
	)
	return nil
}
