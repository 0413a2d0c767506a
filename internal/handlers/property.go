package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/walkthru-dev/walkthru/db"
	"github.com/walkthru-dev/walkthru/internal/models"
	"github.com/walkthru-dev/walkthru/internal/types"
	"github.com/walkthru-dev/walkthru/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreatePropertyRequest struct {
	Name         string               `json:"name" binding:"required"`
	AccessInfo   string               `json:"access_info"`
	OrgType      string               `json:"org_type"`
	CustomFields []models.CustomField `json:"custom_fields"`
}

type UpdatePropertyRequest struct {
	AccessInfo   *string               `json:"access_info"`
	OrgType      *string               `json:"org_type"`
	CustomFields *[]models.CustomField `json:"custom_fields"`
}

type PropertyResponse struct {
	ID           uint                 `json:"id"`
	Name         string               `json:"name"`
	AccessInfo   string               `json:"access_info"`
	OrgType      string               `json:"org_type"`
	CustomFields []models.CustomField `json:"custom_fields"`
}

func ListProperties(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var properties []models.Property

	err = db.DB.Where("organization_id = ?", currentUser.OrganizationID).
		Order("created_at ASC").
		Find(&properties).Error

	if err != nil {
		log.Printf("Failed to list properties: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve properties"})
		return
	}

	response := make([]PropertyResponse, 0, len(properties))

	for _, property := range properties {
		response = append(response, toPropertyResponse(property))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateProperty(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreatePropertyRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	body.Name = strings.TrimSpace(body.Name)

	for _, field := range body.CustomFields {
		if !types.ValidFieldType(field.Type) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Custom field type must be text or yesno"})
			return
		}
	}

	var existing models.Property

	err = db.DB.Where("organization_id = ? AND name = ?", currentUser.OrganizationID, body.Name).
		First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Property already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing property: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	customFields, err := json.Marshal(body.CustomFields)

	if err != nil {
		log.Printf("Failed to encode custom fields: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	property := models.Property{
		OrganizationID: currentUser.OrganizationID,
		Name:           body.Name,
		AccessInfo:     body.AccessInfo,
		OrgType:        body.OrgType,
		CustomFields:   datatypes.JSON(customFields),
	}

	if err := db.DB.Create(&property).Error; err != nil {
		log.Printf("Failed to create property: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}

	ctx.JSON(http.StatusCreated, toPropertyResponse(property))
}

// UpdateProperty edits access instructions, the template tag, or the custom
// field list. Property names are immutable: assignments reference them.
func UpdateProperty(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdatePropertyRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var property models.Property
	name := ctx.Param("name")

	err = db.DB.Where("organization_id = ? AND name = ?", currentUser.OrganizationID, name).
		First(&property).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		} else {
			log.Printf("Failed to fetch property: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve property"})
		}
		return
	}

	if body.AccessInfo != nil {
		property.AccessInfo = *body.AccessInfo
	}

	if body.OrgType != nil {
		property.OrgType = *body.OrgType
	}

	if body.CustomFields != nil {
		for _, field := range *body.CustomFields {
			if !types.ValidFieldType(field.Type) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Custom field type must be text or yesno"})
				return
			}
		}

		customFields, err := json.Marshal(*body.CustomFields)

		if err != nil {
			log.Printf("Failed to encode custom fields: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		property.CustomFields = datatypes.JSON(customFields)
	}

	if err := db.DB.Save(&property).Error; err != nil {
		log.Printf("Failed to update property: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}

	ctx.JSON(http.StatusOK, toPropertyResponse(property))
}

func toPropertyResponse(property models.Property) PropertyResponse {
	var customFields []models.CustomField

	if len(property.CustomFields) > 0 {
		if err := json.Unmarshal(property.CustomFields, &customFields); err != nil {
			log.Printf("Malformed custom fields on property %d: %v", property.ID, err)
		}
	}

	return PropertyResponse{
		ID:           property.ID,
		Name:         property.Name,
		AccessInfo:   property.AccessInfo,
		OrgType:      property.OrgType,
		CustomFields: customFields,
	}
}
