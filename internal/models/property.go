package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Property struct {
	gorm.Model

	OrganizationID uint   `gorm:"not null;uniqueIndex:idx_org_property_name"`
	Name           string `gorm:"not null;uniqueIndex:idx_org_property_name"`
	AccessInfo     string // free-text access instructions (lockbox codes, gate hours, ...)
	OrgType        string
	// Ordered list of {"name": ..., "type": "text"|"yesno"} entries appended
	// to the fixed checklist fields for this property.
	CustomFields datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

type CustomField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
