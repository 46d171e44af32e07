package models

import (
	"time"

	"gorm.io/gorm"
)

// Maintenance is a planned window of work impacting one or more components.
// Attached components record planned impact only; they do not feed the
// derived status computation.
type Maintenance struct {
	gorm.Model

	OrgID       uint   `gorm:"not null;index"`
	UserID      uint   `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:SCHEDULED"`
	StartAt     time.Time
	EndAt       time.Time

	// Relationships
	Components []MaintenanceComponent `gorm:"foreignKey:MaintenanceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Timeline   []MaintenanceTimeline  `gorm:"foreignKey:MaintenanceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

type MaintenanceComponent struct {
	gorm.Model

	MaintenanceID uint   `gorm:"not null;uniqueIndex:idx_maintenance_component"`
	ComponentID   uint   `gorm:"not null;uniqueIndex:idx_maintenance_component"`
	OrgID         uint   `gorm:"not null;index"`
	Status        string `gorm:"not null"`

	// Relationships
	Maintenance Maintenance `gorm:"foreignKey:MaintenanceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Component   Component   `gorm:"foreignKey:ComponentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

type MaintenanceTimeline struct {
	gorm.Model

	MaintenanceID uint   `gorm:"not null;index"`
	OrgID         uint   `gorm:"not null;index"`
	UserID        uint   `gorm:"not null"`
	Message       string `gorm:"not null"`
	Status        string `gorm:"not null"`

	// Relationships
	Maintenance Maintenance `gorm:"foreignKey:MaintenanceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
