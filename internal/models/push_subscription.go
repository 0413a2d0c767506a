package models

import "gorm.io/gorm"

type PushSubscription struct {
	gorm.Model

	UserID   uint   `gorm:"not null;index"`
	Endpoint string `gorm:"not null;uniqueIndex"`
	P256dh   string `gorm:"not null"`
	Auth     string `gorm:"not null"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
