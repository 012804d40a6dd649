package services

import (
	"context"
	"fmt"
	"time"

	"github.com/marine-watch/backend/internal/classifier"
	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/utils"
	"go.uber.org/zap"
)

// SightingRequest describes an observation to identify and record
type SightingRequest struct {
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Method      string  `json:"method"`
	Notes       string  `json:"notes"`
}

// SightingResult is the outcome of an identification attempt
type SightingResult struct {
	Identified  bool                       `json:"identified"`
	Species     *models.Species            `json:"species,omitempty"`
	Observation *models.SpeciesObservation `json:"observation,omitempty"`
	Confidence  float64                    `json:"confidence"`
	Notes       string                     `json:"notes,omitempty"`
}

// SpeciesService manages the species catalog and classifier-backed sightings
type SpeciesService struct {
	repos         *repository.RepositoryFactory
	classifier    *classifier.Client
	notifications *NotificationService
	logger        *utils.Logger
}

// NewSpeciesService creates a new species service. The classifier client may
// be nil; identification then fails with a service unavailable error while
// catalog operations keep working.
func NewSpeciesService(repos *repository.RepositoryFactory, cl *classifier.Client, notifications *NotificationService, logger *utils.Logger) *SpeciesService {
	return &SpeciesService{
		repos:         repos,
		classifier:    cl,
		notifications: notifications,
		logger:        logger.Named("species_service"),
	}
}

// CreateSpecies validates and catalogs a new species
func (s *SpeciesService) CreateSpecies(species *models.Species) error {
	if species.ScientificName == "" {
		return fmt.Errorf("%w: scientific name is required", utils.ErrValidation)
	}
	if species.ThreatLevel == "" {
		species.ThreatLevel = models.ThreatLow
	}
	if !validThreatLevel(species.ThreatLevel) {
		return fmt.Errorf("%w: unknown threat level %q", utils.ErrValidation, species.ThreatLevel)
	}

	return s.repos.Species().Create(species)
}

// GetSpecies retrieves a species by ID
func (s *SpeciesService) GetSpecies(id uint) (*models.Species, error) {
	return s.repos.Species().GetByID(id)
}

// ListSpecies retrieves species with optional filters
func (s *SpeciesService) ListSpecies(offset, limit int, speciesType, threatLevel string) ([]models.Species, int64, error) {
	if threatLevel != "" && !validThreatLevel(threatLevel) {
		return nil, 0, fmt.Errorf("%w: unknown threat level %q", utils.ErrValidation, threatLevel)
	}
	return s.repos.Species().List(offset, limit, speciesType, threatLevel)
}

// UpdateSpecies saves changes to a catalogued species
func (s *SpeciesService) UpdateSpecies(species *models.Species) error {
	if species.ID == 0 {
		return fmt.Errorf("%w: species id is required", utils.ErrValidation)
	}
	if !validThreatLevel(species.ThreatLevel) {
		return fmt.Errorf("%w: unknown threat level %q", utils.ErrValidation, species.ThreatLevel)
	}
	return s.repos.Species().Update(species)
}

// DeleteSpecies removes a species from the catalog
func (s *SpeciesService) DeleteSpecies(id uint) error {
	return s.repos.Species().Delete(id)
}

// ListObservations retrieves recent sightings of a species
func (s *SpeciesService) ListObservations(speciesID uint, limit int) ([]models.SpeciesObservation, error) {
	if _, err := s.repos.Species().GetByID(speciesID); err != nil {
		return nil, err
	}
	return s.repos.Species().ListObservations(speciesID, limit)
}

// IdentifyAndRecord submits a sighting to the classifier and, when it comes
// back identified, upserts the species and records the observation. An
// unidentified sighting is a normal outcome, not an error.
func (s *SpeciesService) IdentifyAndRecord(ctx context.Context, req *SightingRequest) (*SightingResult, error) {
	if req.Description == "" && req.ImageURL == "" {
		return nil, fmt.Errorf("%w: a description or image is required", utils.ErrValidation)
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		return nil, fmt.Errorf("%w: latitude must be between -90 and 90", utils.ErrValidation)
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return nil, fmt.Errorf("%w: longitude must be between -180 and 180", utils.ErrValidation)
	}
	if s.classifier == nil {
		return nil, fmt.Errorf("%w: species identification is not configured", utils.ErrServiceUnavailable)
	}

	identification, err := s.classifier.Identify(ctx, &classifier.IdentificationRequest{
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}

	if !identification.Identified {
		return &SightingResult{
			Identified: false,
			Confidence: identification.Confidence,
			Notes:      identification.Notes,
		}, nil
	}

	species := &models.Species{
		ScientificName:     identification.ScientificName,
		CommonName:         identification.CommonName,
		SpeciesType:        identification.SpeciesType,
		ConservationStatus: identification.ConservationStatus,
		ThreatLevel:        identification.ThreatLevel,
	}
	if species.ThreatLevel == "" || !validThreatLevel(species.ThreatLevel) {
		species.ThreatLevel = models.ThreatLow
	}

	created, err := s.repos.Species().FindOrCreate(species)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert species: %w", err)
	}

	confidence := identification.Confidence
	method := req.Method
	if method == "" {
		method = "visual"
	}
	observation := &models.SpeciesObservation{
		SpeciesID:         species.ID,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		ObservationCount:  1,
		ConfidenceLevel:   &confidence,
		ObservationMethod: method,
		ObserverType:      "ai_system",
		ObservedAt:        time.Now().UTC(),
		Notes:             req.Notes,
	}
	if err := s.repos.Species().CreateObservation(observation); err != nil {
		return nil, fmt.Errorf("failed to record observation: %w", err)
	}

	if s.notifications != nil {
		s.notifications.NotifyTopic(TopicSightings, NotificationTypeObservation, observation)
	}

	s.logger.Info("Recorded identified sighting",
		zap.String("scientific_name", species.ScientificName),
		zap.Bool("new_species", created),
		zap.Float64("confidence", confidence),
	)

	return &SightingResult{
		Identified:  true,
		Species:     species,
		Observation: observation,
		Confidence:  confidence,
		Notes:       identification.Notes,
	}, nil
}

func validThreatLevel(level string) bool {
	switch level {
	case models.ThreatLow, models.ThreatMedium, models.ThreatHigh, models.ThreatCritical:
		return true
	}
	return false
}
