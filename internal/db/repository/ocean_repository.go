package repository

import (
	"time"

	"github.com/marine-watch/backend/internal/db/models"
	"gorm.io/gorm"
)

// OceanRepository defines operations for managing ocean measurements
type OceanRepository interface {
	Repository
	Create(measurement *models.OceanMeasurement) error
	CreateBatch(measurements []models.OceanMeasurement) error
	ListInWindow(start, end time.Time) ([]models.OceanMeasurement, error)
	ListByLocation(location string, limit int) ([]models.OceanMeasurement, error)
	Latest(limit int) ([]models.OceanMeasurement, error)
}

// oceanRepository implements OceanRepository
type oceanRepository struct {
	BaseRepository
}

// NewOceanRepository creates a new ocean measurement repository
func NewOceanRepository(db *gorm.DB) OceanRepository {
	return &oceanRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a single measurement
func (r *oceanRepository) Create(measurement *models.OceanMeasurement) error {
	return r.handleError(r.GetDB().Create(measurement).Error)
}

// CreateBatch inserts multiple measurements atomically
func (r *oceanRepository) CreateBatch(measurements []models.OceanMeasurement) error {
	if len(measurements) == 0 {
		return nil
	}

	tx := r.GetDB().Begin()
	if tx.Error != nil {
		return r.handleError(tx.Error)
	}

	if err := tx.CreateInBatches(measurements, 100).Error; err != nil {
		tx.Rollback()
		return r.handleError(err)
	}

	return r.handleError(tx.Commit().Error)
}

// ListInWindow retrieves every measurement inside [start, end)
func (r *oceanRepository) ListInWindow(start, end time.Time) ([]models.OceanMeasurement, error) {
	var measurements []models.OceanMeasurement
	err := r.GetDB().
		Where("recorded_at >= ? AND recorded_at < ?", start, end).
		Order("recorded_at asc").
		Find(&measurements).Error
	if err != nil {
		return nil, r.handleError(err)
	}
	return measurements, nil
}

// ListByLocation retrieves a station's readings, newest first
func (r *oceanRepository) ListByLocation(location string, limit int) ([]models.OceanMeasurement, error) {
	var measurements []models.OceanMeasurement

	query := r.GetDB().Where("location_name = ?", location).Order("recorded_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&measurements).Error; err != nil {
		return nil, r.handleError(err)
	}
	return measurements, nil
}

// Latest retrieves the most recent readings across all stations
func (r *oceanRepository) Latest(limit int) ([]models.OceanMeasurement, error) {
	var measurements []models.OceanMeasurement

	query := r.GetDB().Order("recorded_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&measurements).Error; err != nil {
		return nil, r.handleError(err)
	}
	return measurements, nil
}
