package models

import (
	"time"
)

// CatchEvent represents a reported fishing catch
type CatchEvent struct {
	ID                  uint      `gorm:"primarykey" json:"id"`
	SpeciesID           uint      `gorm:"not null;index" json:"species_id"`
	CatchAmount         float64   `gorm:"not null" json:"catch_amount"` // in tons
	FishingArea         string    `gorm:"type:varchar(100);index" json:"fishing_area"`
	Latitude            *float64  `json:"latitude,omitempty"`
	Longitude           *float64  `json:"longitude,omitempty"`
	FishingMethod       string    `gorm:"type:varchar(50)" json:"fishing_method"`
	VesselType          string    `gorm:"type:varchar(50)" json:"vessel_type"`
	CaughtAt            time.Time `gorm:"not null;index" json:"caught_at"`
	QuotaLimit          *float64  `json:"quota_limit,omitempty"`          // maximum allowed catch; nil when no quota applies
	SustainabilityScore *float64  `json:"sustainability_score,omitempty"` // 0-100 scale; nil when unassessed
	CreatedAt           time.Time `json:"created_at"`

	// Relationships
	Species Species `gorm:"foreignKey:SpeciesID" json:"species,omitempty"`
}

// TableName overrides the table name for CatchEvent
func (CatchEvent) TableName() string {
	return "catch_events"
}
