package models

import (
	"time"
)

// OceanMeasurement represents a single reading from a monitoring station
type OceanMeasurement struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	Latitude         float64   `gorm:"not null" json:"latitude"`
	Longitude        float64   `gorm:"not null" json:"longitude"`
	Temperature      float64   `gorm:"not null" json:"temperature"`
	Salinity         *float64  `json:"salinity,omitempty"`
	PHLevel          *float64  `gorm:"column:ph_level" json:"ph_level,omitempty"`
	OxygenLevel      *float64  `json:"oxygen_level,omitempty"`
	CurrentSpeed     *float64  `json:"current_speed,omitempty"`
	CurrentDirection *float64  `json:"current_direction,omitempty"`
	Depth            *float64  `json:"depth,omitempty"`
	LocationName     string    `gorm:"type:varchar(100)" json:"location_name"`
	RecordedAt       time.Time `gorm:"not null;index" json:"recorded_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName overrides the table name for OceanMeasurement
func (OceanMeasurement) TableName() string {
	return "ocean_measurements"
}
