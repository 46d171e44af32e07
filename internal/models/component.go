package models

import "gorm.io/gorm"

// Component is a monitored service whose health is shown on the status page.
// Status is the manual baseline; the value displayed to end users is derived
// from active incident links (internal/status) and is never written back here.
type Component struct {
	gorm.Model

	OrgID       uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:OPERATIONAL"`

	// Relationships
	Incidents    []IncidentComponent    `gorm:"foreignKey:ComponentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Maintenances []MaintenanceComponent `gorm:"foreignKey:ComponentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
