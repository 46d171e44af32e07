package models

import (
	"time"

	"gorm.io/gorm"
)

// Incident is an unplanned event impacting one or more components.
// ResolvedAt is non-nil exactly when Status is RESOLVED.
type Incident struct {
	gorm.Model

	OrgID       uint   `gorm:"not null;index"`
	UserID      uint   `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	Severity    string `gorm:"not null"`
	Status      string `gorm:"not null;default:INVESTIGATING"`
	OccurredAt  time.Time
	ResolvedAt  *time.Time

	// Relationships
	Components []IncidentComponent `gorm:"foreignKey:IncidentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Timeline   []IncidentTimeline  `gorm:"foreignKey:IncidentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// IncidentComponent records the degraded status a specific incident imposes
// on a specific component. Unique per (incident, component).
type IncidentComponent struct {
	gorm.Model

	IncidentID  uint   `gorm:"not null;uniqueIndex:idx_incident_component"`
	ComponentID uint   `gorm:"not null;uniqueIndex:idx_incident_component"`
	OrgID       uint   `gorm:"not null;index"`
	Status      string `gorm:"not null"`

	// Relationships
	Incident  Incident  `gorm:"foreignKey:IncidentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Component Component `gorm:"foreignKey:ComponentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// IncidentTimeline is an append-only log entry for an incident.
type IncidentTimeline struct {
	gorm.Model

	IncidentID uint   `gorm:"not null;index"`
	OrgID      uint   `gorm:"not null;index"`
	UserID     uint   `gorm:"not null"`
	Message    string `gorm:"not null"`
	Status     string `gorm:"not null"`

	// Relationships
	Incident Incident `gorm:"foreignKey:IncidentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
