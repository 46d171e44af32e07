package models

import "gorm.io/gorm"

type Organization struct {
	gorm.Model

	Name string `gorm:"not null"`
	Slug string `gorm:"uniqueIndex;not null"`

	// Relationships
	Memberships  []OrganizationMembership `gorm:"foreignKey:OrgID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Components   []Component              `gorm:"foreignKey:OrgID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Incidents    []Incident               `gorm:"foreignKey:OrgID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Maintenances []Maintenance            `gorm:"foreignKey:OrgID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Subscribers  []Subscriber             `gorm:"foreignKey:OrgID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

type OrganizationMembership struct {
	gorm.Model

	UserID uint   `gorm:"not null;uniqueIndex:idx_user_org"`
	OrgID  uint   `gorm:"not null;uniqueIndex:idx_user_org"`
	Role   string `gorm:"not null"`

	// Relationships
	User         User         `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Organization Organization `gorm:"foreignKey:OrgID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
