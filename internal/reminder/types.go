// Package reminder sends deadline reminders on a fixed schedule.
package reminder

import (
	"context"
	"time"

	"github.com/alekspetrov/taskpilot/internal/tasks"
)

// Config holds reminder scheduler settings.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron spec or @every descriptor
	Timezone string `yaml:"timezone"`
	// IncludeToday also reminds about tasks due today, not only tomorrow.
	IncludeToday bool          `yaml:"include_today"`
	SendTimeout  time.Duration `yaml:"send_timeout"`
	// Dedupe sends at most one reminder per task per day.
	Dedupe bool `yaml:"dedupe"`
}

// DefaultConfig returns the default reminder settings.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		Schedule:     "@every 1h",
		Timezone:     "UTC",
		IncludeToday: true,
		SendTimeout:  10 * time.Second,
		Dedupe:       true,
	}
}

// Store is the part of the task store a tick needs.
type Store interface {
	DueWithin(ctx context.Context, today time.Time, daysAhead int) ([]*tasks.Task, error)
	MarkReminded(ctx context.Context, id int64, day time.Time) error
}

// Result is the outcome of one reminder in a tick.
type Result struct {
	TaskID  int64
	OwnerID string
	Skipped bool // already reminded today
	Success bool
	Error   error
}

// Status holds scheduler status information.
type Status struct {
	Enabled  bool
	Running  bool
	Schedule string
	Timezone string
	NextRun  time.Time
	LastRun  time.Time
}
