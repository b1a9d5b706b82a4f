// Package health summarises what a configuration enables, for the startup
// banner and `taskpilot start` preflight.
package health

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alekspetrov/taskpilot/internal/config"
)

// Status represents feature or dependency status
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
	StatusDisabled
)

// Check represents a health check result
type Check struct {
	Name    string
	Status  Status
	Message string
	Fix     string
}

// FeatureStatus represents a feature with its availability
type FeatureStatus struct {
	Name    string
	Enabled bool
	Status  Status
	Note    string
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks   []Check
	Features []FeatureStatus
}

// OK reports whether no check failed.
func (r *HealthReport) OK() bool {
	for _, c := range r.Checks {
		if c.Status == StatusError {
			return false
		}
	}
	return true
}

// RunChecks performs all health checks based on config
func RunChecks(cfg *config.Config) *HealthReport {
	return &HealthReport{
		Checks:   runChecks(cfg),
		Features: checkFeatures(cfg),
	}
}

func runChecks(cfg *config.Config) []Check {
	checks := []Check{}

	if cfg.Telegram != nil && cfg.Telegram.BotToken != "" {
		checks = append(checks, Check{Name: "bot token", Status: StatusOK, Message: "set"})
	} else {
		checks = append(checks, Check{
			Name:    "bot token",
			Status:  StatusError,
			Message: "missing",
			Fix:     fmt.Sprintf("set telegram.bot_token or export %s", config.BotTokenEnv),
		})
	}

	checks = append(checks, checkStoreDir(cfg))

	if err := cfg.Validate(); err != nil {
		checks = append(checks, Check{
			Name:    "config",
			Status:  StatusError,
			Message: err.Error(),
			Fix:     "edit " + config.DefaultConfigPath(),
		})
	} else {
		checks = append(checks, Check{Name: "config", Status: StatusOK, Message: "valid"})
	}

	return checks
}

// checkStoreDir verifies the database directory exists or can be created.
func checkStoreDir(cfg *config.Config) Check {
	if cfg.Store == nil || cfg.Store.Path == "" {
		return Check{Name: "store", Status: StatusError, Message: "no path configured"}
	}

	dir := filepath.Dir(cfg.Store.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Check{
			Name:    "store",
			Status:  StatusError,
			Message: fmt.Sprintf("cannot create %s: %v", dir, err),
			Fix:     "change store.path",
		}
	}
	return Check{Name: "store", Status: StatusOK, Message: cfg.Store.Driver + " " + cfg.Store.Path}
}

// checkFeatures checks feature availability
func checkFeatures(cfg *config.Config) []FeatureStatus {
	features := []FeatureStatus{}

	telegramEnabled := cfg.Telegram != nil && cfg.Telegram.Enabled
	features = append(features, FeatureStatus{
		Name:    "Telegram",
		Enabled: telegramEnabled,
		Status:  boolToStatus(telegramEnabled),
	})

	// An empty allowlist leaves the bot open to any Telegram user.
	if telegramEnabled {
		restricted := len(cfg.Telegram.AllowedIDs) > 0
		allowlist := FeatureStatus{Name: "Allowlist", Enabled: restricted, Status: StatusOK}
		if !restricted {
			allowlist.Status = StatusWarning
			allowlist.Note = "bot answers everyone"
		}
		features = append(features, allowlist)
	}

	remindersEnabled := cfg.Reminder != nil && cfg.Reminder.Enabled
	reminders := FeatureStatus{
		Name:    "Reminders",
		Enabled: remindersEnabled,
		Status:  boolToStatus(remindersEnabled),
	}
	if remindersEnabled && !cfg.Reminder.Dedupe {
		reminders.Status = StatusWarning
		reminders.Note = "dedupe off, repeats every tick"
	}
	features = append(features, reminders)

	rateLimited := cfg.RateLimit != nil && cfg.RateLimit.Enabled
	features = append(features, FeatureStatus{
		Name:    "Rate limit",
		Enabled: rateLimited,
		Status:  boolToStatus(rateLimited),
	})

	expiring := cfg.Conversation != nil && cfg.Conversation.TTL > 0
	features = append(features, FeatureStatus{
		Name:    "Flow expiry",
		Enabled: expiring,
		Status:  boolToStatus(expiring),
	})

	return features
}

// boolToStatus converts bool to Status
func boolToStatus(enabled bool) Status {
	if enabled {
		return StatusOK
	}
	return StatusDisabled
}

// Symbol returns the symbol for a status
func (s Status) Symbol() string {
	switch s {
	case StatusOK:
		return "✓"
	case StatusWarning:
		return "○"
	case StatusError:
		return "✗"
	case StatusDisabled:
		return "·"
	default:
		return "?"
	}
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}
