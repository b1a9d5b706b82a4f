// Package tasks persists per-owner tasks and answers the deadline queries
// the reminder scheduler runs.
package tasks

import (
	"time"
)

// DateLayout is how deadlines are shown to and typed by users.
const DateLayout = "02/01/2006"

// storageLayout sorts lexically in date order, which ORDER BY relies on.
const storageLayout = "2006-01-02"

// Task is a single to-do item owned by one user.
type Task struct {
	ID      int64
	OwnerID string
	Title   string
	// Deadline is a calendar date at midnight UTC, nil when the task has none.
	Deadline  *time.Time
	Completed bool
	CreatedAt time.Time
	// LastRemindedOn is the date of the last delivered reminder, nil if none.
	LastRemindedOn *time.Time
}

// DeadlineText renders the deadline as DD/MM/YYYY, or "" when absent.
func (t *Task) DeadlineText() string {
	if t.Deadline == nil {
		return ""
	}
	return t.Deadline.Format(DateLayout)
}

// DaysLeft returns the number of calendar days from today until the deadline.
// ok is false for tasks without a deadline.
func (t *Task) DaysLeft(today time.Time) (days int, ok bool) {
	if t.Deadline == nil {
		return 0, false
	}
	diff := t.Deadline.Sub(Day(today))
	return int(diff.Hours() / 24), true
}

// RemindedOn reports whether a reminder was already delivered on day.
func (t *Task) RemindedOn(day time.Time) bool {
	return t.LastRemindedOn != nil && t.LastRemindedOn.Equal(Day(day))
}

// Day strips the clock and zone from t, keeping the calendar date as seen in
// t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatDay(t time.Time) string {
	return Day(t).Format(storageLayout)
}

func parseDay(s string) (time.Time, error) {
	return time.Parse(storageLayout, s)
}
