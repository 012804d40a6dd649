package models

import (
	"time"
)

// Alert types emitted by the rule engine
const (
	AlertBiodiversityRisk   = "biodiversity_risk"
	AlertSpeciesThreat      = "species_threat"
	AlertOverfishing        = "overfishing"
	AlertSustainabilityRisk = "sustainability_risk"
)

// Alert severities, lowest to highest
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert represents an actionable alert produced by the rule engine or
// imported from an external source.
//
// Invariant: for a given (alert_type, location, subject_key) triple at most
// one alert may be active at any time. The rule engine checks before insert
// and the migration adds a partial unique index so concurrent evaluation runs
// cannot slip a duplicate past the check. SubjectKey is empty for
// region-scoped alerts and holds the species scientific name for
// species-scoped ones.
type Alert struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	AlertType   string     `gorm:"type:varchar(50);not null;index:idx_alerts_dedup" json:"alert_type"`
	Severity    string     `gorm:"type:varchar(20);not null" json:"severity"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Location    string     `gorm:"type:varchar(100);index:idx_alerts_dedup" json:"location"`
	SubjectKey  string     `gorm:"type:varchar(100);index:idx_alerts_dedup" json:"subject_key"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	IsActive    bool       `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Resolved reports whether the alert has completed its active -> resolved
// transition.
func (a *Alert) Resolved() bool {
	return a.ResolvedAt != nil
}
