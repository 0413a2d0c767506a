package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/walkthru-dev/walkthru/db"
	"github.com/walkthru-dev/walkthru/internal/dispatcher"
	"github.com/walkthru-dev/walkthru/internal/models"
	"github.com/walkthru-dev/walkthru/internal/utils"
	"gorm.io/gorm"
)

type SaveSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

type SendPushRequest struct {
	UserID       uint   `json:"user_id" binding:"required"`
	PropertyName string `json:"property_name" binding:"required"`
}

// SaveSubscription registers a browser push endpoint for the current user.
// Re-registering an existing endpoint refreshes its keys.
func SaveSubscription(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body SaveSubscriptionRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var subscription models.PushSubscription

	err = db.DB.Where("endpoint = ?", body.Endpoint).First(&subscription).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check existing subscription: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// An endpoint belongs to the browser that registered it; nobody else
	// may re-bind it and start receiving that user's notices.
	if err == nil && subscription.UserID != currentUser.ID {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Endpoint is registered to another user"})
		return
	}

	subscription.UserID = currentUser.ID
	subscription.Endpoint = body.Endpoint
	subscription.P256dh = body.Keys.P256dh
	subscription.Auth = body.Keys.Auth

	if err := db.DB.Save(&subscription).Error; err != nil {
		log.Printf("Failed to save subscription: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save subscription"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Subscription saved"})
}

// SendPushNotification triggers a dispatch manually. Delivery is
// fire-and-forget: the caller gets an acknowledgment that the notice was
// queued, nothing more.
func SendPushNotification(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body SendPushRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var targetCount int64

	err = db.DB.Model(&models.User{}).
		Where("id = ? AND organization_id = ?", body.UserID, currentUser.OrganizationID).
		Count(&targetCount).Error

	if err != nil {
		log.Printf("Failed to check target user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if targetCount == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "User does not belong to this organization"})
		return
	}

	dispatcher.Enqueue(body.UserID, body.PropertyName)

	ctx.JSON(http.StatusAccepted, gin.H{"message": "Notification queued"})
}
