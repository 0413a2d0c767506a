package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/walkthru-dev/walkthru/db"
	"github.com/walkthru-dev/walkthru/internal/models"
	"github.com/walkthru-dev/walkthru/internal/report"
	"github.com/walkthru-dev/walkthru/internal/services"
	"github.com/walkthru-dev/walkthru/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmitFormRequest struct {
	PropertyName string         `json:"property_name" binding:"required"`
	Date         string         `json:"date"`
	Fields       []report.Field `json:"fields"`
	Photos       []report.Photo `json:"photos"`
}

// SubmitForm stores a completed checklist and hands back its generated
// identifier. Submissions are durable rows, so concurrent inspectors on the
// same instance never overwrite each other.
func SubmitForm(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body SubmitFormRequest

	if err := ctx.BindJSON(&body); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var propertyCount int64

	err = db.DB.Model(&models.Property{}).
		Where("organization_id = ? AND name = ?", currentUser.OrganizationID, body.PropertyName).
		Count(&propertyCount).Error

	if err != nil {
		log.Printf("Failed to check property: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if propertyCount == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Property does not exist in this organization"})
		return
	}

	date := body.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	payload, err := json.Marshal(report.Checklist{
		PropertyName: body.PropertyName,
		Inspector:    currentUser.Email,
		Date:         date,
		Fields:       body.Fields,
		Photos:       body.Photos,
	})

	if err != nil {
		log.Printf("Failed to encode checklist payload: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	submission := models.ChecklistSubmission{
		SubmissionID:   uuid.NewString(),
		UserID:         currentUser.ID,
		OrganizationID: currentUser.OrganizationID,
		PropertyName:   body.PropertyName,
		Payload:        datatypes.JSON(payload),
	}

	if err := db.DB.Create(&submission).Error; err != nil {
		log.Printf("Failed to store submission: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store submission"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"submission_id": submission.SubmissionID})
}

// DownloadPDF renders a stored submission, streams the PDF to the caller
// and emails it to the organization's recipients. With no submission_id
// query parameter it falls back to the caller's most recent submission.
// Re-downloading regenerates the identical document under a fresh
// timestamped filename.
func DownloadPDF(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var submission models.ChecklistSubmission

	query := db.DB.Where("organization_id = ?", currentUser.OrganizationID)

	if submissionID := ctx.Query("submission_id"); submissionID != "" {
		query = query.Where("submission_id = ?", submissionID)
	} else {
		query = query.Where("user_id = ?", currentUser.ID).Order("created_at DESC")
	}

	if err := query.First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "No submission found"})
			return
		}
		log.Printf("Failed to fetch submission: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var checklist report.Checklist

	if err := json.Unmarshal(submission.Payload, &checklist); err != nil {
		log.Printf("Malformed payload on submission %s: %v", submission.SubmissionID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Stored submission is malformed"})
		return
	}

	pdf, err := report.Render(checklist)

	if err != nil {
		log.Printf("Failed to render report for submission %s: %v", submission.SubmissionID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}

	filename := report.Filename(time.Now())

	var org models.Organization

	if err := db.DB.First(&org, submission.OrganizationID).Error; err != nil {
		log.Printf("Failed to fetch organization %d: %v", submission.OrganizationID, err)
	} else {
		// Delivery is decoupled from the response already in flight; a
		// failed send is logged, never surfaced.
		go func() {
			if err := services.SendReportEmail(org, submission.PropertyName, filename, pdf); err != nil {
				log.Printf("Failed to email report for submission %s: %v", submission.SubmissionID, err)
			}
		}()
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "application/pdf", pdf)
}
