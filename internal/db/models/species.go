package models

import (
	"time"

	"gorm.io/gorm"
)

// Threat levels recognized for a species. The scoring engine treats high and
// critical as "threatened".
const (
	ThreatLow      = "low"
	ThreatMedium   = "medium"
	ThreatHigh     = "high"
	ThreatCritical = "critical"
)

// Species represents a catalogued marine species
type Species struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	ScientificName     string         `gorm:"uniqueIndex;not null" json:"scientific_name"`
	CommonName         string         `json:"common_name"`
	SpeciesType        string         `gorm:"type:varchar(50)" json:"species_type"` // fish, mammal, reptile, invertebrate, coral, algae
	ConservationStatus string         `gorm:"type:varchar(50)" json:"conservation_status"`
	Habitat            string         `gorm:"type:varchar(200)" json:"habitat"`
	DepthRange         string         `gorm:"type:varchar(50)" json:"depth_range"`
	PopulationTrend    string         `gorm:"type:varchar(20)" json:"population_trend"` // increasing, decreasing, stable, unknown
	ThreatLevel        string         `gorm:"type:varchar(20);index" json:"threat_level"`
	Description        string         `gorm:"type:text" json:"description"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Observations []SpeciesObservation `gorm:"foreignKey:SpeciesID" json:"observations,omitempty"`
	Catches      []CatchEvent         `gorm:"foreignKey:SpeciesID" json:"catches,omitempty"`
}

// IsThreatened reports whether the species counts toward the threatened
// ratio used by the composite score and the species_threat alert rule.
func (s *Species) IsThreatened() bool {
	return s.ThreatLevel == ThreatHigh || s.ThreatLevel == ThreatCritical
}

// SpeciesObservation represents a single sighting of a species, whether
// reported by a researcher or produced by the external image classifier.
type SpeciesObservation struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	SpeciesID         uint      `gorm:"not null;index" json:"species_id"`
	Latitude          float64   `gorm:"not null" json:"latitude"`
	Longitude         float64   `gorm:"not null" json:"longitude"`
	ObservationCount  int       `gorm:"default:1" json:"observation_count"`
	ConfidenceLevel   *float64  `json:"confidence_level,omitempty"` // classifier confidence 0-100; nil for manual sightings
	ObservationMethod string    `gorm:"type:varchar(50)" json:"observation_method"` // visual, camera, sonar
	ObserverType      string    `gorm:"type:varchar(50)" json:"observer_type"`      // researcher, citizen, ai_system
	ObservedAt        time.Time `gorm:"not null;index" json:"observed_at"`
	Notes             string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`

	// Relationships
	Species Species `gorm:"foreignKey:SpeciesID" json:"species,omitempty"`
}
