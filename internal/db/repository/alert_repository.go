package repository

import (
	"time"

	"github.com/marine-watch/backend/internal/db/models"
	"gorm.io/gorm"
)

// AlertFilter narrows alert listings
type AlertFilter struct {
	AlertType  string
	Severity   string
	Location   string
	ActiveOnly bool
}

// AlertRepository defines operations for managing alerts
type AlertRepository interface {
	Repository
	Create(alert *models.Alert) error
	CreateBatch(alerts []models.Alert) error
	GetByID(id uint) (*models.Alert, error)
	List(filter AlertFilter, offset, limit int) ([]models.Alert, int64, error)
	FindActive(alertType, location, subjectKey string) (*models.Alert, error)
	CountActiveBySeverity() (map[string]int, error)
	Resolve(id uint) (*models.Alert, error)
}

// alertRepository implements AlertRepository
type alertRepository struct {
	BaseRepository
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a single alert
func (r *alertRepository) Create(alert *models.Alert) error {
	return r.handleError(r.GetDB().Create(alert).Error)
}

// CreateBatch inserts an evaluation run's alerts in one transaction. A
// failure on any row rolls back the whole batch so a run is never half
// persisted.
func (r *alertRepository) CreateBatch(alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	tx := r.GetDB().Begin()
	if tx.Error != nil {
		return r.handleError(tx.Error)
	}

	for i := range alerts {
		if err := tx.Create(&alerts[i]).Error; err != nil {
			tx.Rollback()
			return r.handleError(err)
		}
	}

	return r.handleError(tx.Commit().Error)
}

// GetByID retrieves an alert by its ID
func (r *alertRepository) GetByID(id uint) (*models.Alert, error) {
	var alert models.Alert
	if err := r.GetDB().First(&alert, id).Error; err != nil {
		return nil, r.handleError(err)
	}
	return &alert, nil
}

// List retrieves alerts matching the filter, newest first
func (r *alertRepository) List(filter AlertFilter, offset, limit int) ([]models.Alert, int64, error) {
	var alerts []models.Alert
	var total int64

	query := r.GetDB().Model(&models.Alert{})
	if filter.AlertType != "" {
		query = query.Where("alert_type = ?", filter.AlertType)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, r.handleError(err)
	}

	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&alerts).Error
	if err != nil {
		return nil, 0, r.handleError(err)
	}

	return alerts, total, nil
}

// FindActive retrieves the active alert for a (type, location, subject)
// triple, ErrNotFound when none is active
func (r *alertRepository) FindActive(alertType, location, subjectKey string) (*models.Alert, error) {
	var alert models.Alert
	err := r.GetDB().
		Where("alert_type = ? AND location = ? AND subject_key = ? AND is_active = ?",
			alertType, location, subjectKey, true).
		First(&alert).Error
	if err != nil {
		return nil, r.handleError(err)
	}
	return &alert, nil
}

// CountActiveBySeverity counts the active alerts per severity level
func (r *alertRepository) CountActiveBySeverity() (map[string]int, error) {
	var rows []struct {
		Severity string
		Count    int
	}
	err := r.GetDB().Model(&models.Alert{}).
		Select("severity, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("severity").
		Scan(&rows).Error
	if err != nil {
		return nil, r.handleError(err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Severity] = row.Count
	}
	return counts, nil
}

// Resolve marks an active alert inactive and stamps the resolution time.
// Resolving an alert that does not exist or is already resolved returns
// ErrNotFound.
func (r *alertRepository) Resolve(id uint) (*models.Alert, error) {
	now := time.Now().UTC()
	result := r.GetDB().Model(&models.Alert{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":   false,
			"resolved_at": now,
		})
	if result.Error != nil {
		return nil, r.handleError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(id)
}
