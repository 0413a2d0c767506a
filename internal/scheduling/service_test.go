package scheduling_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walkthru-dev/walkthru/db"
	"github.com/walkthru-dev/walkthru/internal/models"
	"github.com/walkthru-dev/walkthru/internal/scheduling"
	"github.com/walkthru-dev/walkthru/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = gdb.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Property{},
		&models.Assignment{},
	)
	require.NoError(t, err)

	db.DB = gdb
}

func seedOrg(t *testing.T, name string, properties ...string) (models.Organization, models.User) {
	org := models.Organization{Name: name}
	require.NoError(t, db.DB.Create(&org).Error)

	for _, property := range properties {
		p := models.Property{OrganizationID: org.ID, Name: property}
		require.NoError(t, db.DB.Create(&p).Error)
	}

	user := models.User{
		Email:          fmt.Sprintf("inspector@%s.example.com", name),
		PasswordHash:   "irrelevant",
		Role:           types.RoleUser,
		OrganizationID: org.ID,
	}
	require.NoError(t, db.DB.Create(&user).Error)

	return org, user
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateAssignment(t *testing.T) {
	setupTestDB(t)
	org, user := seedOrg(t, "acme", "Hilltop House")

	assignment, err := scheduling.Create(org.ID, scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       user.ID,
		StartDate:    time.Date(2024, time.January, 10, 14, 30, 0, 0, time.UTC),
		EndDate:      time.Date(2024, time.January, 12, 9, 0, 0, 0, time.UTC),
		Notes:        "bring spare keys",
	})
	require.NoError(t, err)

	assert.Equal(t, types.AssignmentScheduled, assignment.Status)
	assert.Equal(t, date(2024, time.January, 10), assignment.StartDate)
	assert.Equal(t, date(2024, time.January, 12), assignment.EndDate)
	assert.False(t, assignment.EndDate.Before(assignment.StartDate))
}

func TestCreateAssignmentEndBeforeStart(t *testing.T) {
	setupTestDB(t)
	org, user := seedOrg(t, "acme", "Hilltop House")

	_, err := scheduling.Create(org.ID, scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       user.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 9),
	})
	assert.ErrorIs(t, err, scheduling.ErrInvalidRange)
}

func TestCreateAssignmentUnknownProperty(t *testing.T) {
	setupTestDB(t)
	org, user := seedOrg(t, "acme", "Hilltop House")

	_, err := scheduling.Create(org.ID, scheduling.CreateInput{
		PropertyName: "Nonexistent",
		UserID:       user.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 10),
	})
	assert.ErrorIs(t, err, scheduling.ErrUnknownProperty)
}

func TestCreateAssignmentUserOutsideOrganization(t *testing.T) {
	setupTestDB(t)
	org, _ := seedOrg(t, "acme", "Hilltop House")
	_, outsider := seedOrg(t, "globex", "Other Place")

	_, err := scheduling.Create(org.ID, scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       outsider.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 10),
	})
	assert.ErrorIs(t, err, scheduling.ErrUnknownUser)
}

func TestCreateAssignmentConflict(t *testing.T) {
	setupTestDB(t)
	org, user := seedOrg(t, "acme", "Hilltop House")

	input := scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       user.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 10),
	}

	first, err := scheduling.Create(org.ID, input)
	require.NoError(t, err)

	// Identical create must fail and leave prior state unchanged.
	_, err = scheduling.Create(org.ID, input)
	assert.ErrorIs(t, err, scheduling.ErrConflict)

	var count int64
	require.NoError(t, db.DB.Model(&models.Assignment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var persisted models.Assignment
	require.NoError(t, db.DB.First(&persisted, first.ID).Error)
	assert.Equal(t, first.StartDate, persisted.StartDate)
	assert.Equal(t, first.EndDate, persisted.EndDate)
}

func TestUniqueIndexBacksUpConflictCheck(t *testing.T) {
	setupTestDB(t)
	org, user := seedOrg(t, "acme", "Hilltop House")

	first := models.Assignment{
		PropertyName:   "Hilltop House",
		UserID:         user.ID,
		OrganizationID: org.ID,
		StartDate:      date(2024, time.January, 10),
		EndDate:        date(2024, time.January, 10),
		Status:         types.AssignmentScheduled,
	}
	require.NoError(t, db.DB.Create(&first).Error)

	// A writer that slips past the pre-insert count (two requests racing
	// on the same day) still hits the composite unique index, and the
	// driver error must translate so the service can map it to a conflict.
	duplicate := models.Assignment{
		PropertyName:   "Hilltop House",
		UserID:         user.ID,
		OrganizationID: org.ID,
		StartDate:      date(2024, time.January, 10),
		EndDate:        date(2024, time.January, 11),
		Status:         types.AssignmentScheduled,
	}
	err := db.DB.Create(&duplicate).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCreateAssignmentSamePropertyDifferentDay(t *testing.T) {
	setupTestDB(t)
	org, user := seedOrg(t, "acme", "Hilltop House")

	_, err := scheduling.Create(org.ID, scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       user.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 10),
	})
	require.NoError(t, err)

	_, err = scheduling.Create(org.ID, scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       user.ID,
		StartDate:    date(2024, time.January, 11),
		EndDate:      date(2024, time.January, 11),
	})
	assert.NoError(t, err)
}

func TestCreateAssignmentSameStartOtherOrganization(t *testing.T) {
	setupTestDB(t)
	orgA, userA := seedOrg(t, "acme", "Hilltop House")
	orgB, userB := seedOrg(t, "globex", "Hilltop House")

	_, err := scheduling.Create(orgA.ID, scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       userA.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 10),
	})
	require.NoError(t, err)

	// Uniqueness is scoped per organization, not global.
	_, err = scheduling.Create(orgB.ID, scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       userB.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 10),
	})
	assert.NoError(t, err)
}

func TestUpdateDragAndDropMovesOnlyDates(t *testing.T) {
	setupTestDB(t)
	org, user := seedOrg(t, "acme", "Hilltop House")

	created, err := scheduling.Create(org.ID, scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       user.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 10),
		Notes:        "bring spare keys",
		OneTimeCheck: "check the boiler",
	})
	require.NoError(t, err)

	newStart := date(2024, time.February, 1)
	newEnd := date(2024, time.February, 3)

	updated, err := scheduling.Update(org.ID, created.ID, scheduling.Patch{
		StartDate: &newStart,
		EndDate:   &newEnd,
	})
	require.NoError(t, err)

	assert.Equal(t, newStart, updated.StartDate)
	assert.Equal(t, newEnd, updated.EndDate)
	assert.Equal(t, created.PropertyName, updated.PropertyName)
	assert.Equal(t, created.UserID, updated.UserID)
	assert.Equal(t, created.Status, updated.Status)
	assert.Equal(t, created.Notes, updated.Notes)
	assert.Equal(t, created.OneTimeCheck, updated.OneTimeCheck)
}

func TestUpdateConflictExcludesSelf(t *testing.T) {
	setupTestDB(t)
	org, user := seedOrg(t, "acme", "Hilltop House")

	created, err := scheduling.Create(org.ID, scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       user.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 10),
	})
	require.NoError(t, err)

	// Editing without moving the start day must not conflict with itself.
	notes := "updated notes"
	_, err = scheduling.Update(org.ID, created.ID, scheduling.Patch{Notes: &notes})
	assert.NoError(t, err)
}

func TestUpdateConflictWithOtherAssignment(t *testing.T) {
	setupTestDB(t)
	org, user := seedOrg(t, "acme", "Hilltop House")

	_, err := scheduling.Create(org.ID, scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       user.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 10),
	})
	require.NoError(t, err)

	second, err := scheduling.Create(org.ID, scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       user.ID,
		StartDate:    date(2024, time.January, 11),
		EndDate:      date(2024, time.January, 11),
	})
	require.NoError(t, err)

	moved := date(2024, time.January, 10)
	_, err = scheduling.Update(org.ID, second.ID, scheduling.Patch{
		StartDate: &moved,
		EndDate:   &moved,
	})
	assert.ErrorIs(t, err, scheduling.ErrConflict)
}

func TestUpdateNotFound(t *testing.T) {
	setupTestDB(t)
	org, _ := seedOrg(t, "acme", "Hilltop House")

	notes := "whatever"
	_, err := scheduling.Update(org.ID, 9999, scheduling.Patch{Notes: &notes})
	assert.ErrorIs(t, err, scheduling.ErrNotFound)
}

func TestDeleteNotFoundPerformsNoMutation(t *testing.T) {
	setupTestDB(t)
	org, user := seedOrg(t, "acme", "Hilltop House")

	_, err := scheduling.Create(org.ID, scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       user.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 10),
	})
	require.NoError(t, err)

	err = scheduling.Delete(org.ID, 9999)
	assert.ErrorIs(t, err, scheduling.ErrNotFound)

	var count int64
	require.NoError(t, db.DB.Model(&models.Assignment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteIsScopedToOrganization(t *testing.T) {
	setupTestDB(t)
	orgA, userA := seedOrg(t, "acme", "Hilltop House")
	orgB, _ := seedOrg(t, "globex", "Other Place")

	created, err := scheduling.Create(orgA.ID, scheduling.CreateInput{
		PropertyName: "Hilltop House",
		UserID:       userA.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 10),
	})
	require.NoError(t, err)

	err = scheduling.Delete(orgB.ID, created.ID)
	assert.ErrorIs(t, err, scheduling.ErrNotFound)
}

// The full lifecycle from the product walkthrough: register, schedule,
// collide, reschedule, delete, end up with an empty calendar.
func TestAssignmentLifecycle(t *testing.T) {
	setupTestDB(t)
	org, user := seedOrg(t, "Acme", "A", "B")

	created, err := scheduling.Create(org.ID, scheduling.CreateInput{
		PropertyName: "A",
		UserID:       user.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 10),
	})
	require.NoError(t, err)

	_, err = scheduling.Create(org.ID, scheduling.CreateInput{
		PropertyName: "A",
		UserID:       user.ID,
		StartDate:    date(2024, time.January, 10),
		EndDate:      date(2024, time.January, 10),
	})
	require.ErrorIs(t, err, scheduling.ErrConflict)

	newEnd := date(2024, time.January, 12)
	updated, err := scheduling.Update(org.ID, created.ID, scheduling.Patch{EndDate: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, newEnd, updated.EndDate)

	require.NoError(t, scheduling.Delete(org.ID, created.ID))

	assignments, err := scheduling.List(org.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}
