package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Email          string `gorm:"uniqueIndex;not null"`
	PasswordHash   string `gorm:"not null"`
	Role           string `gorm:"not null;default:user"` // "admin" or "user"
	OrganizationID uint   `gorm:"not null;index"`

	// Mutable per-inspector bookkeeping, unrelated to scheduling.
	Mileage      float64
	LastLocation string

	// Relationships
	Organization      Organization          `gorm:"foreignKey:OrganizationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignments       []Assignment          `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	PushSubscriptions []PushSubscription    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Submissions       []ChecklistSubmission `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
