package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/walkthru-dev/walkthru/db"
	"github.com/walkthru-dev/walkthru/internal/models"
	"github.com/walkthru-dev/walkthru/internal/types"
	"gorm.io/gorm"
)

var (
	ErrConflict        = errors.New("an assignment already starts at this property on this day")
	ErrNotFound        = errors.New("assignment not found")
	ErrInvalidRange    = errors.New("end date must not be before start date")
	ErrUnknownProperty = errors.New("property does not exist in this organization")
	ErrUnknownUser     = errors.New("user does not belong to this organization")
	ErrInvalidStatus   = errors.New("invalid assignment status")
)

type CreateInput struct {
	PropertyName string
	UserID       uint
	StartDate    time.Time
	EndDate      time.Time
	Notes        string
	OneTimeCheck string
}

// Patch is a partial update. Nil fields are left untouched, so a
// drag-and-drop date move carries only StartDate and EndDate.
type Patch struct {
	PropertyName *string
	UserID       *uint
	StartDate    *time.Time
	EndDate      *time.Time
	Status       *string
	Notes        *string
	OneTimeCheck *string
}

// Assignments are day-granular: dates are stored at UTC midnight so the
// (property, start day, organization) unique index holds per calendar day.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func Create(organizationID uint, in CreateInput) (*models.Assignment, error) {
	start := truncateToDay(in.StartDate)
	end := truncateToDay(in.EndDate)

	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	if err := validateProperty(organizationID, in.PropertyName); err != nil {
		return nil, err
	}

	if err := validateUser(organizationID, in.UserID); err != nil {
		return nil, err
	}

	if err := checkConflict(organizationID, in.PropertyName, start, 0); err != nil {
		return nil, err
	}

	assignment := models.Assignment{
		PropertyName:   in.PropertyName,
		UserID:         in.UserID,
		OrganizationID: organizationID,
		StartDate:      start,
		EndDate:        end,
		Status:         types.AssignmentScheduled,
		Notes:          in.Notes,
		OneTimeCheck:   in.OneTimeCheck,
	}

	if err := db.DB.Create(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("creating assignment: %w", err)
	}

	return &assignment, nil
}

func Update(organizationID uint, id uint, patch Patch) (*models.Assignment, error) {
	var assignment models.Assignment

	err := db.DB.Where("id = ? AND organization_id = ?", id, organizationID).First(&assignment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching assignment: %w", err)
	}

	if patch.PropertyName != nil {
		if err := validateProperty(organizationID, *patch.PropertyName); err != nil {
			return nil, err
		}
		assignment.PropertyName = *patch.PropertyName
	}

	if patch.UserID != nil {
		if err := validateUser(organizationID, *patch.UserID); err != nil {
			return nil, err
		}
		assignment.UserID = *patch.UserID
	}

	if patch.StartDate != nil {
		assignment.StartDate = truncateToDay(*patch.StartDate)
	}

	if patch.EndDate != nil {
		assignment.EndDate = truncateToDay(*patch.EndDate)
	}

	if assignment.EndDate.Before(assignment.StartDate) {
		return nil, ErrInvalidRange
	}

	if patch.Status != nil {
		if !types.ValidAssignmentStatus(*patch.Status) {
			return nil, ErrInvalidStatus
		}
		assignment.Status = *patch.Status
	}

	if patch.Notes != nil {
		assignment.Notes = *patch.Notes
	}

	if patch.OneTimeCheck != nil {
		assignment.OneTimeCheck = *patch.OneTimeCheck
	}

	// Re-check the uniqueness invariant against the new values, excluding
	// the record being updated.
	if err := checkConflict(organizationID, assignment.PropertyName, assignment.StartDate, assignment.ID); err != nil {
		return nil, err
	}

	if err := db.DB.Save(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("updating assignment: %w", err)
	}

	return &assignment, nil
}

func Delete(organizationID uint, id uint) error {
	var assignment models.Assignment

	err := db.DB.Where("id = ? AND organization_id = ?", id, organizationID).First(&assignment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("fetching assignment: %w", err)
	}

	// Destructive removal; confirmation happens at the UI layer.
	if err := db.DB.Unscoped().Delete(&assignment).Error; err != nil {
		return fmt.Errorf("deleting assignment: %w", err)
	}

	return nil
}

func List(organizationID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment

	err := db.DB.Where("organization_id = ?", organizationID).
		Order("start_date ASC").
		Find(&assignments).Error

	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}

	return assignments, nil
}

func validateProperty(organizationID uint, name string) error {
	var count int64

	err := db.DB.Model(&models.Property{}).
		Where("organization_id = ? AND name = ?", organizationID, name).
		Count(&count).Error

	if err != nil {
		return fmt.Errorf("checking property: %w", err)
	}

	if count == 0 {
		return ErrUnknownProperty
	}

	return nil
}

func validateUser(organizationID uint, userID uint) error {
	var count int64

	err := db.DB.Model(&models.User{}).
		Where("id = ? AND organization_id = ?", userID, organizationID).
		Count(&count).Error

	if err != nil {
		return fmt.Errorf("checking user: %w", err)
	}

	if count == 0 {
		return ErrUnknownUser
	}

	return nil
}

func checkConflict(organizationID uint, propertyName string, start time.Time, excludeID uint) error {
	query := db.DB.Model(&models.Assignment{}).
		Where("organization_id = ? AND property_name = ? AND start_date = ?", organizationID, propertyName, start)

	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}

	var count int64

	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("checking conflicts: %w", err)
	}

	if count > 0 {
		return ErrConflict
	}

	return nil
}
