package repository

import (
	"time"

	"github.com/marine-watch/backend/internal/db/models"
	"gorm.io/gorm"
)

// SpeciesCatchTotal is one row of the catch-by-species ranking
type SpeciesCatchTotal struct {
	SpeciesID         uint     `json:"species_id"`
	ScientificName    string   `json:"scientific_name"`
	CommonName        string   `json:"common_name"`
	TotalCatch        float64  `json:"total_catch"`
	EventCount        int      `json:"event_count"`
	AvgSustainability *float64 `json:"avg_sustainability,omitempty"`
}

// CatchRepository defines operations for managing catch events
type CatchRepository interface {
	Repository
	Create(event *models.CatchEvent) error
	GetByID(id uint) (*models.CatchEvent, error)
	ListInWindow(start, end time.Time) ([]models.CatchEvent, error)
	ListByAreaInWindow(area string, start, end time.Time) ([]models.CatchEvent, error)
	ListBySpecies(speciesID uint, limit int) ([]models.CatchEvent, error)
	CountByAreaInWindow(area string, start, end time.Time) (int64, error)
	TotalsBySpecies(start, end time.Time, limit int) ([]SpeciesCatchTotal, error)
	DistinctAreas() ([]string, error)
}

// catchRepository implements CatchRepository
type catchRepository struct {
	BaseRepository
}

// NewCatchRepository creates a new catch event repository
func NewCatchRepository(db *gorm.DB) CatchRepository {
	return &catchRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new catch event
func (r *catchRepository) Create(event *models.CatchEvent) error {
	return r.handleError(r.GetDB().Create(event).Error)
}

// GetByID retrieves a catch event with its species
func (r *catchRepository) GetByID(id uint) (*models.CatchEvent, error) {
	var event models.CatchEvent
	if err := r.GetDB().Preload("Species").First(&event, id).Error; err != nil {
		return nil, r.handleError(err)
	}
	return &event, nil
}

// ListInWindow retrieves every catch event inside [start, end), oldest first.
// Species records are preloaded for the quota and threat checks.
func (r *catchRepository) ListInWindow(start, end time.Time) ([]models.CatchEvent, error) {
	var events []models.CatchEvent
	err := r.GetDB().Preload("Species").
		Where("caught_at >= ? AND caught_at < ?", start, end).
		Order("caught_at asc").
		Find(&events).Error
	if err != nil {
		return nil, r.handleError(err)
	}
	return events, nil
}

// ListByAreaInWindow retrieves the catch events of one fishing area inside
// [start, end)
func (r *catchRepository) ListByAreaInWindow(area string, start, end time.Time) ([]models.CatchEvent, error) {
	var events []models.CatchEvent
	err := r.GetDB().Preload("Species").
		Where("fishing_area = ? AND caught_at >= ? AND caught_at < ?", area, start, end).
		Order("caught_at asc").
		Find(&events).Error
	if err != nil {
		return nil, r.handleError(err)
	}
	return events, nil
}

// ListBySpecies retrieves the most recent catch events of one species
func (r *catchRepository) ListBySpecies(speciesID uint, limit int) ([]models.CatchEvent, error) {
	var events []models.CatchEvent

	query := r.GetDB().Where("species_id = ?", speciesID).Order("caught_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, r.handleError(err)
	}
	return events, nil
}

// CountByAreaInWindow counts the catch events of one fishing area inside
// [start, end)
func (r *catchRepository) CountByAreaInWindow(area string, start, end time.Time) (int64, error) {
	var count int64
	err := r.GetDB().Model(&models.CatchEvent{}).
		Where("fishing_area = ? AND caught_at >= ? AND caught_at < ?", area, start, end).
		Count(&count).Error
	return count, r.handleError(err)
}

// TotalsBySpecies ranks species by total catch volume inside [start, end)
func (r *catchRepository) TotalsBySpecies(start, end time.Time, limit int) ([]SpeciesCatchTotal, error) {
	var totals []SpeciesCatchTotal

	query := r.GetDB().Model(&models.CatchEvent{}).
		Select(`catch_events.species_id,
			species.scientific_name,
			species.common_name,
			SUM(catch_events.catch_amount) AS total_catch,
			COUNT(*) AS event_count,
			AVG(catch_events.sustainability_score) AS avg_sustainability`).
		Joins("JOIN species ON species.id = catch_events.species_id").
		Where("catch_events.caught_at >= ? AND catch_events.caught_at < ?", start, end).
		Group("catch_events.species_id, species.scientific_name, species.common_name").
		Order("total_catch DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(&totals).Error; err != nil {
		return nil, r.handleError(err)
	}
	return totals, nil
}

// DistinctAreas lists every fishing area that has reported at least one catch
func (r *catchRepository) DistinctAreas() ([]string, error) {
	var areas []string
	err := r.GetDB().Model(&models.CatchEvent{}).
		Distinct("fishing_area").
		Where("fishing_area <> ''").
		Order("fishing_area asc").
		Pluck("fishing_area", &areas).Error
	if err != nil {
		return nil, r.handleError(err)
	}
	return areas, nil
}
