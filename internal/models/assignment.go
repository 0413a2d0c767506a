package models

import (
	"time"

	"gorm.io/gorm"
)

type Assignment struct {
	gorm.Model

	// Properties are referenced by name, not id, matching how organizations
	// manage their property lists. At most one assignment may start at a
	// given property on a given day within an organization.
	PropertyName   string    `gorm:"not null;uniqueIndex:idx_property_start_org"`
	StartDate      time.Time `gorm:"not null;uniqueIndex:idx_property_start_org"`
	OrganizationID uint      `gorm:"not null;uniqueIndex:idx_property_start_org"`
	UserID         uint      `gorm:"not null;index"`
	EndDate        time.Time `gorm:"not null"`
	Status         string    `gorm:"not null;default:scheduled"` // "scheduled", "completed", "canceled"
	Notes          string
	OneTimeCheck   string // optional one-time special-check request for this visit

	// Relationships
	User         User         `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
