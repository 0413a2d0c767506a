package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Organization struct {
	gorm.Model

	Name    string `gorm:"uniqueIndex;not null"`
	OrgType string `gorm:"not null;default:residential"` // selects which checklist template the client renders
	// Email addresses that receive rendered inspection reports.
	Recipients datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Users       []User                `gorm:"foreignKey:OrganizationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Properties  []Property            `gorm:"foreignKey:OrganizationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignments []Assignment          `gorm:"foreignKey:OrganizationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Submissions []ChecklistSubmission `gorm:"foreignKey:OrganizationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// RecipientList decodes the stored recipient addresses. A missing or
// malformed column yields an empty list rather than an error.
func (o Organization) RecipientList() []string {
	if len(o.Recipients) == 0 {
		return nil
	}

	var recipients []string

	if err := json.Unmarshal(o.Recipients, &recipients); err != nil {
		return nil
	}

	return recipients
}
