package repository

import (
	"time"

	"github.com/marine-watch/backend/internal/db/models"
	"gorm.io/gorm"
)

// BiodiversityRepository defines operations for managing biodiversity
// assessments
type BiodiversityRepository interface {
	Repository
	Create(assessment *models.BiodiversityAssessment) error
	GetByID(id uint) (*models.BiodiversityAssessment, error)
	ListInWindow(start, end time.Time) ([]models.BiodiversityAssessment, error)
	ListByRegion(region string, limit int) ([]models.BiodiversityAssessment, error)
	LatestByRegion(region string) (*models.BiodiversityAssessment, error)
	LatestPerRegion() ([]models.BiodiversityAssessment, error)
}

// biodiversityRepository implements BiodiversityRepository
type biodiversityRepository struct {
	BaseRepository
}

// NewBiodiversityRepository creates a new biodiversity assessment repository
func NewBiodiversityRepository(db *gorm.DB) BiodiversityRepository {
	return &biodiversityRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new assessment
func (r *biodiversityRepository) Create(assessment *models.BiodiversityAssessment) error {
	return r.handleError(r.GetDB().Create(assessment).Error)
}

// GetByID retrieves an assessment by its ID
func (r *biodiversityRepository) GetByID(id uint) (*models.BiodiversityAssessment, error) {
	var assessment models.BiodiversityAssessment
	if err := r.GetDB().First(&assessment, id).Error; err != nil {
		return nil, r.handleError(err)
	}
	return &assessment, nil
}

// ListInWindow retrieves every assessment inside [start, end)
func (r *biodiversityRepository) ListInWindow(start, end time.Time) ([]models.BiodiversityAssessment, error) {
	var assessments []models.BiodiversityAssessment
	err := r.GetDB().
		Where("assessed_at >= ? AND assessed_at < ?", start, end).
		Order("assessed_at asc").
		Find(&assessments).Error
	if err != nil {
		return nil, r.handleError(err)
	}
	return assessments, nil
}

// ListByRegion retrieves a region's assessment history, newest first
func (r *biodiversityRepository) ListByRegion(region string, limit int) ([]models.BiodiversityAssessment, error) {
	var assessments []models.BiodiversityAssessment

	query := r.GetDB().Where("region_name = ?", region).Order("assessed_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&assessments).Error; err != nil {
		return nil, r.handleError(err)
	}
	return assessments, nil
}

// LatestByRegion retrieves a region's most recent assessment
func (r *biodiversityRepository) LatestByRegion(region string) (*models.BiodiversityAssessment, error) {
	var assessment models.BiodiversityAssessment
	err := r.GetDB().Where("region_name = ?", region).
		Order("assessed_at desc").
		Limit(1).
		First(&assessment).Error
	if err != nil {
		return nil, r.handleError(err)
	}
	return &assessment, nil
}

// LatestPerRegion retrieves the most recent assessment of every region. The
// correlated subquery keeps it portable between postgres and the sqlite test
// database.
func (r *biodiversityRepository) LatestPerRegion() ([]models.BiodiversityAssessment, error) {
	var assessments []models.BiodiversityAssessment
	err := r.GetDB().
		Where(`assessed_at = (SELECT MAX(b2.assessed_at)
			FROM biodiversity_assessments b2
			WHERE b2.region_name = biodiversity_assessments.region_name)`).
		Order("region_name asc").
		Find(&assessments).Error
	if err != nil {
		return nil, r.handleError(err)
	}
	return assessments, nil
}
