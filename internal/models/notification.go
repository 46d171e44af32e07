package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification records a fan-out dispatch to subscribers. Payload carries the
// notified entity as a tagged envelope ("type": component|incident|maintenance)
// so downstream consumers can branch on shape.
type Notification struct {
	gorm.Model

	OrgID      uint   `gorm:"not null;index"`
	EntityType string `gorm:"not null"`
	EntityID   uint   `gorm:"not null"`
	Action     string `gorm:"not null"`
	Channel    string `gorm:"not null"`
	Status     string `gorm:"not null"`
	Recipients int    `gorm:"not null;default:0"`
	Payload    datatypes.JSON `gorm:"type:jsonb"`
	SentAt     *time.Time
}
