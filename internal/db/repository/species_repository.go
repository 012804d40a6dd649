package repository

import (
	"errors"
	"time"

	"github.com/marine-watch/backend/internal/db/models"
	"gorm.io/gorm"
)

// SpeciesRepository defines operations for managing the species catalog and
// its observations
type SpeciesRepository interface {
	Repository
	Create(species *models.Species) error
	GetByID(id uint) (*models.Species, error)
	GetByScientificName(name string) (*models.Species, error)
	List(offset, limit int, speciesType, threatLevel string) ([]models.Species, int64, error)
	Update(species *models.Species) error
	Delete(id uint) error
	Count() (int64, error)
	CountThreatened() (int64, error)
	FindOrCreate(species *models.Species) (created bool, err error)

	CreateObservation(obs *models.SpeciesObservation) error
	ListObservations(speciesID uint, limit int) ([]models.SpeciesObservation, error)
	CountObservationsInWindow(start, end time.Time) (int64, error)
}

// speciesRepository implements SpeciesRepository
type speciesRepository struct {
	BaseRepository
}

// NewSpeciesRepository creates a new species repository
func NewSpeciesRepository(db *gorm.DB) SpeciesRepository {
	return &speciesRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new species
func (r *speciesRepository) Create(species *models.Species) error {
	return r.handleError(r.GetDB().Create(species).Error)
}

// GetByID retrieves a species by its ID
func (r *speciesRepository) GetByID(id uint) (*models.Species, error) {
	var species models.Species
	if err := r.GetDB().First(&species, id).Error; err != nil {
		return nil, r.handleError(err)
	}
	return &species, nil
}

// GetByScientificName retrieves a species by its unique scientific name
func (r *speciesRepository) GetByScientificName(name string) (*models.Species, error) {
	var species models.Species
	if err := r.GetDB().Where("scientific_name = ?", name).First(&species).Error; err != nil {
		return nil, r.handleError(err)
	}
	return &species, nil
}

// List retrieves species with optional type and threat-level filters
func (r *speciesRepository) List(offset, limit int, speciesType, threatLevel string) ([]models.Species, int64, error) {
	var species []models.Species
	var total int64

	query := r.GetDB().Model(&models.Species{})
	if speciesType != "" {
		query = query.Where("species_type = ?", speciesType)
	}
	if threatLevel != "" {
		query = query.Where("threat_level = ?", threatLevel)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, r.handleError(err)
	}

	err := query.Order("scientific_name asc").Offset(offset).Limit(limit).Find(&species).Error
	if err != nil {
		return nil, 0, r.handleError(err)
	}

	return species, total, nil
}

// Update saves changes to an existing species
func (r *speciesRepository) Update(species *models.Species) error {
	return r.handleError(r.GetDB().Save(species).Error)
}

// Delete soft-deletes a species
func (r *speciesRepository) Delete(id uint) error {
	result := r.GetDB().Delete(&models.Species{}, id)
	if result.Error != nil {
		return r.handleError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of catalogued species
func (r *speciesRepository) Count() (int64, error) {
	var count int64
	err := r.GetDB().Model(&models.Species{}).Count(&count).Error
	return count, r.handleError(err)
}

// CountThreatened returns the number of species at high or critical threat
func (r *speciesRepository) CountThreatened() (int64, error) {
	var count int64
	err := r.GetDB().Model(&models.Species{}).
		Where("threat_level IN ?", []string{models.ThreatHigh, models.ThreatCritical}).
		Count(&count).Error
	return count, r.handleError(err)
}

// FindOrCreate looks the species up by scientific name and creates it when
// missing. On a hit it refreshes the mutable catalog fields from the incoming
// record and leaves identity fields alone.
func (r *speciesRepository) FindOrCreate(species *models.Species) (bool, error) {
	var existing models.Species
	err := r.GetDB().Where("scientific_name = ?", species.ScientificName).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, r.handleError(err)
		}
		if err := r.GetDB().Create(species).Error; err != nil {
			return false, r.handleError(err)
		}
		return true, nil
	}

	existing.CommonName = species.CommonName
	existing.ConservationStatus = species.ConservationStatus
	existing.PopulationTrend = species.PopulationTrend
	existing.ThreatLevel = species.ThreatLevel
	if species.Description != "" {
		existing.Description = species.Description
	}
	if err := r.GetDB().Save(&existing).Error; err != nil {
		return false, r.handleError(err)
	}

	*species = existing
	return false, nil
}

// CreateObservation records a sighting of a species
func (r *speciesRepository) CreateObservation(obs *models.SpeciesObservation) error {
	return r.handleError(r.GetDB().Create(obs).Error)
}

// ListObservations retrieves the most recent sightings of a species
func (r *speciesRepository) ListObservations(speciesID uint, limit int) ([]models.SpeciesObservation, error) {
	var obs []models.SpeciesObservation

	query := r.GetDB().Where("species_id = ?", speciesID).Order("observed_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&obs).Error; err != nil {
		return nil, r.handleError(err)
	}
	return obs, nil
}

// CountObservationsInWindow counts sightings across all species inside
// [start, end)
func (r *speciesRepository) CountObservationsInWindow(start, end time.Time) (int64, error) {
	var count int64
	err := r.GetDB().Model(&models.SpeciesObservation{}).
		Where("observed_at >= ? AND observed_at < ?", start, end).
		Count(&count).Error
	return count, r.handleError(err)
}
