package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChecklistSubmission struct {
	gorm.Model

	// Generated identifier handed back to the client on submit and supplied
	// again on download, so concurrent inspectors never overwrite each other.
	SubmissionID   string `gorm:"uniqueIndex;not null"`
	UserID         uint   `gorm:"not null;index"`
	OrganizationID uint   `gorm:"not null;index"`
	PropertyName   string `gorm:"not null"`
	// Raw checklist payload as submitted: fixed fields, condition checks,
	// custom fields and base64 photo attachments.
	Payload datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	User         User         `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
