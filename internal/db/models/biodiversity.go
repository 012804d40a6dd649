package models

import (
	"time"
)

// Ecosystem health classifications used by biodiversity assessments
const (
	EcosystemExcellent = "excellent"
	EcosystemGood      = "good"
	EcosystemFair      = "fair"
	EcosystemPoor      = "poor"
	EcosystemCritical  = "critical"
)

// BiodiversityAssessment represents a point-in-time biodiversity survey of a
// region. Multiple assessments per region form a time series; the latest one
// per region feeds the regional risk checks.
type BiodiversityAssessment struct {
	ID                 uint      `gorm:"primarykey" json:"id"`
	RegionName         string    `gorm:"type:varchar(100);not null;index" json:"region_name"`
	Latitude           *float64  `json:"latitude,omitempty"`
	Longitude          *float64  `json:"longitude,omitempty"`
	SpeciesCount       int       `json:"species_count"`
	EndemicSpecies     int       `json:"endemic_species"`
	ThreatenedSpecies  int       `json:"threatened_species"`
	BiodiversityScore  *float64  `json:"biodiversity_score,omitempty"` // 0-100 scale; nil when the survey did not score
	EcosystemHealth    string    `gorm:"type:varchar(20)" json:"ecosystem_health"`
	AssessedAt         time.Time `gorm:"not null;index" json:"assessed_at"`
	Notes              string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// TableName overrides the table name for BiodiversityAssessment
func (BiodiversityAssessment) TableName() string {
	return "biodiversity_assessments"
}
