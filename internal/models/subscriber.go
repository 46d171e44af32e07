package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscriber is an email address registered for an organization's status
// notifications. Unique per (org, email). PENDING until the verification
// code is confirmed, SUBSCRIBED afterwards, UNSUBSCRIBED after opt-out.
type Subscriber struct {
	gorm.Model

	OrgID                     uint   `gorm:"not null;uniqueIndex:idx_org_email"`
	Email                     string `gorm:"not null;uniqueIndex:idx_org_email"`
	Status                    string `gorm:"not null;default:PENDING"`
	IsVerified                bool   `gorm:"not null;default:false"`
	VerificationCode          string `gorm:"not null;index"`
	VerificationCodeExpiresAt time.Time
	UnsubscribeCode           string `gorm:"not null;index"`
	VerifiedAt                *time.Time
	SubscribedAt              *time.Time
	UnsubscribedAt            *time.Time
}
