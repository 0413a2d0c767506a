package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/walkthru-dev/walkthru/db"
	"github.com/walkthru-dev/walkthru/internal/dispatcher"
	"github.com/walkthru-dev/walkthru/internal/models"
	"github.com/walkthru-dev/walkthru/internal/scheduling"
	"github.com/walkthru-dev/walkthru/internal/utils"
)

type CreateAssignmentRequest struct {
	PropertyName string    `json:"property_name" binding:"required"`
	UserID       uint      `json:"user_id" binding:"required"`
	StartDate    time.Time `json:"start_date" binding:"required"`
	EndDate      time.Time `json:"end_date" binding:"required"`
	Notes        string    `json:"notes"`
	OneTimeCheck string    `json:"one_time_check"`
}

type UpdateAssignmentRequest struct {
	PropertyName *string    `json:"property_name"`
	UserID       *uint      `json:"user_id"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Status       *string    `json:"status"`
	Notes        *string    `json:"notes"`
	OneTimeCheck *string    `json:"one_time_check"`
}

type AssignmentResponse struct {
	ID           uint      `json:"id"`
	PropertyName string    `json:"property_name"`
	UserID       uint      `json:"user_id"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
	OneTimeCheck string    `json:"one_time_check"`
}

func CreateAssignment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateAssignmentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	assignment, err := scheduling.Create(currentUser.OrganizationID, scheduling.CreateInput{
		PropertyName: body.PropertyName,
		UserID:       body.UserID,
		StartDate:    body.StartDate,
		EndDate:      body.EndDate,
		Notes:        body.Notes,
		OneTimeCheck: body.OneTimeCheck,
	})

	if err != nil {
		respondSchedulingError(ctx, err)
		return
	}

	// Best-effort side effect: the assigned user gets a push notification,
	// but dispatch problems never fail the create.
	dispatcher.Enqueue(assignment.UserID, assignment.PropertyName)

	ctx.JSON(http.StatusCreated, toAssignmentResponse(*assignment))
}

func ListAssignments(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	assignments, err := scheduling.List(currentUser.OrganizationID)

	if err != nil {
		log.Printf("Failed to list assignments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignments"})
		return
	}

	response := make([]AssignmentResponse, 0, len(assignments))

	for _, assignment := range assignments {
		response = append(response, toAssignmentResponse(assignment))
	}

	ctx.JSON(http.StatusOK, response)
}

// CalendarEvents returns the display projection of the organization's
// assignments (synthesized titles, single-day events widened to a full-day
// block). The adjusted dates exist only in this response.
func CalendarEvents(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	assignments, err := scheduling.List(currentUser.OrganizationID)

	if err != nil {
		log.Printf("Failed to list assignments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignments"})
		return
	}

	var users []models.User

	if err := db.DB.Where("organization_id = ?", currentUser.OrganizationID).Find(&users).Error; err != nil {
		log.Printf("Failed to list users: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	ctx.JSON(http.StatusOK, scheduling.ProjectEvents(assignments, users))
}

func UpdateAssignment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := parseAssignmentID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment id"})
		return
	}

	var body UpdateAssignmentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	assignment, err := scheduling.Update(currentUser.OrganizationID, id, scheduling.Patch{
		PropertyName: body.PropertyName,
		UserID:       body.UserID,
		StartDate:    body.StartDate,
		EndDate:      body.EndDate,
		Status:       body.Status,
		Notes:        body.Notes,
		OneTimeCheck: body.OneTimeCheck,
	})

	if err != nil {
		respondSchedulingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toAssignmentResponse(*assignment))
}

func DeleteAssignment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := parseAssignmentID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment id"})
		return
	}

	if err := scheduling.Delete(currentUser.OrganizationID, id); err != nil {
		respondSchedulingError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func respondSchedulingError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, scheduling.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, scheduling.ErrInvalidRange),
		errors.Is(err, scheduling.ErrUnknownProperty),
		errors.Is(err, scheduling.ErrUnknownUser),
		errors.Is(err, scheduling.ErrInvalidStatus):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Scheduling error: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func parseAssignmentID(ctx *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	return uint(id), err
}

func toAssignmentResponse(assignment models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:           assignment.ID,
		PropertyName: assignment.PropertyName,
		UserID:       assignment.UserID,
		StartDate:    assignment.StartDate,
		EndDate:      assignment.EndDate,
		Status:       assignment.Status,
		Notes:        assignment.Notes,
		OneTimeCheck: assignment.OneTimeCheck,
	}
}
