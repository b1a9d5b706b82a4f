package health

import (
	"path/filepath"
	"testing"

	"github.com/alekspetrov/taskpilot/internal/config"
)

func TestStatusSymbol(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, "✓"},
		{StatusWarning, "○"},
		{StatusError, "✗"},
		{StatusDisabled, "·"},
		{Status(99), "?"},
	}
	for _, tt := range tests {
		if got := tt.status.Symbol(); got != tt.want {
			t.Errorf("Status(%d).Symbol() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, "ok"},
		{StatusWarning, "warning"},
		{StatusError, "error"},
		{StatusDisabled, "disabled"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Store.Path = filepath.Join(t.TempDir(), "db", "tasks.db")
	cfg.Telegram.BotToken = "123:abc"
	return cfg
}

func findCheck(r *HealthReport, name string) *Check {
	for i := range r.Checks {
		if r.Checks[i].Name == name {
			return &r.Checks[i]
		}
	}
	return nil
}

func findFeature(r *HealthReport, name string) *FeatureStatus {
	for i := range r.Features {
		if r.Features[i].Name == name {
			return &r.Features[i]
		}
	}
	return nil
}

func TestRunChecksHealthy(t *testing.T) {
	report := RunChecks(testConfig(t))

	if !report.OK() {
		t.Errorf("expected healthy report, got %+v", report.Checks)
	}
	for _, name := range []string{"bot token", "store", "config"} {
		if c := findCheck(report, name); c == nil || c.Status != StatusOK {
			t.Errorf("check %q = %+v", name, c)
		}
	}
}

func TestRunChecksMissingToken(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telegram.BotToken = ""

	report := RunChecks(cfg)
	if report.OK() {
		t.Error("report should fail without a bot token")
	}
	if c := findCheck(report, "bot token"); c == nil || c.Fix == "" {
		t.Errorf("bot token check = %+v, want a fix hint", c)
	}
}

func TestRunChecksInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reminder.Timezone = "Nowhere/Special"

	report := RunChecks(cfg)
	if c := findCheck(report, "config"); c == nil || c.Status != StatusError {
		t.Errorf("config check = %+v", c)
	}
}

func TestCheckFeatures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		feature string
		want    Status
	}{
		{"telegram on", func(*config.Config) {}, "Telegram", StatusOK},
		{"telegram off", func(c *config.Config) { c.Telegram.Enabled = false }, "Telegram", StatusDisabled},
		{"open allowlist warns", func(*config.Config) {}, "Allowlist", StatusWarning},
		{"restricted allowlist", func(c *config.Config) { c.Telegram.AllowedIDs = []int64{1} }, "Allowlist", StatusOK},
		{"reminders with dedupe", func(*config.Config) {}, "Reminders", StatusOK},
		{"reminders without dedupe warn", func(c *config.Config) { c.Reminder.Dedupe = false }, "Reminders", StatusWarning},
		{"reminders off", func(c *config.Config) { c.Reminder.Enabled = false }, "Reminders", StatusDisabled},
		{"rate limit off", func(c *config.Config) { c.RateLimit.Enabled = false }, "Rate limit", StatusDisabled},
		{"no expiry", func(c *config.Config) { c.Conversation.TTL = 0 }, "Flow expiry", StatusDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)

			f := findFeature(RunChecks(cfg), tt.feature)
			if f == nil {
				t.Fatalf("feature %q missing", tt.feature)
			}
			if f.Status != tt.want {
				t.Errorf("%s status = %v, want %v", tt.feature, f.Status, tt.want)
			}
		})
	}
}
