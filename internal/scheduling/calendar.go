package scheduling

import (
	"time"

	"github.com/walkthru-dev/walkthru/internal/models"
)

// Event is what the calendar UI renders. Start/End here are display values
// and are never written back to the store.
type Event struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	PropertyName string    `json:"property_name"`
	UserID       uint      `json:"user_id"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
	OneTimeCheck string    `json:"one_time_check"`
}

// ProjectEvents maps assignments to display events. Titles join the property
// against the assigned user's email. A single-day assignment gets its
// displayed end advanced by one day so it renders as a full-day block
// instead of a zero-width event.
func ProjectEvents(assignments []models.Assignment, users []models.User) []Event {
	emails := make(map[uint]string, len(users))
	for _, user := range users {
		emails[user.ID] = user.Email
	}

	events := make([]Event, 0, len(assignments))

	for _, a := range assignments {
		end := a.EndDate

		if sameDay(a.StartDate, a.EndDate) {
			end = a.StartDate.AddDate(0, 0, 1)
		}

		events = append(events, Event{
			ID:           a.ID,
			Title:        a.PropertyName + " - " + emails[a.UserID],
			Start:        a.StartDate,
			End:          end,
			PropertyName: a.PropertyName,
			UserID:       a.UserID,
			Status:       a.Status,
			Notes:        a.Notes,
			OneTimeCheck: a.OneTimeCheck,
		})
	}

	return events
}

func sameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
