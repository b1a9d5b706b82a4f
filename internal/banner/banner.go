// Package banner prints the taskpilot logo and startup summary.
package banner

import (
	"fmt"
	"io"
	"strings"

	"github.com/alekspetrov/taskpilot/internal/config"
	"github.com/alekspetrov/taskpilot/internal/health"
	"github.com/alekspetrov/taskpilot/internal/reminder"
)

// Name is the product name
const Name = "Task Pilot"

// Logo is the ASCII art logo
const Logo = `
   ████████╗ █████╗ ███████╗██╗  ██╗
   ╚══██╔══╝██╔══██╗██╔════╝██║ ██╔╝
      ██║   ███████║███████╗█████╔╝
      ██║   ██╔══██║╚════██║██╔═██╗
      ██║   ██║  ██║███████║██║  ██╗
      ╚═╝   ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝
`

// Tagline is the project tagline
const Tagline = "Your tasks, one chat away"

// PrintWithVersion prints the banner with version info
func PrintWithVersion(w io.Writer, version string) {
	fmt.Fprint(w, Logo)
	fmt.Fprintf(w, "   %s\n", Tagline)
	fmt.Fprintf(w, "   v%s\n\n", version)
}

// StartupTelegram prints the bot startup summary with feature and reminder
// scheduler status.
func StartupTelegram(w io.Writer, version string, cfg *config.Config, reminders reminder.Status) {
	report := health.RunChecks(cfg)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "TASK PILOT v%s │ Telegram Bot\n", version)
	fmt.Fprintln(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	var enabled, warnings []string
	for _, f := range report.Features {
		switch f.Status {
		case health.StatusOK:
			enabled = append(enabled, f.Name)
		case health.StatusWarning:
			warnings = append(warnings, f.Name+"*")
		}
	}
	if len(enabled) > 0 {
		fmt.Fprintf(w, "✓ %s\n", strings.Join(enabled, ", "))
	}
	if len(warnings) > 0 {
		fmt.Fprintf(w, "○ %s\n", strings.Join(warnings, ", "))
	}
	for _, f := range report.Features {
		if f.Note != "" {
			fmt.Fprintf(w, "  * %s: %s\n", f.Name, f.Note)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Store:     %s (%s)\n", cfg.Store.Path, cfg.Store.Driver)
	fmt.Fprintf(w, "Reminders: %s\n", reminderLine(reminders))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Listening... (Ctrl+C to stop)")
	fmt.Fprintln(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(w)
}

func reminderLine(st reminder.Status) string {
	switch {
	case !st.Enabled:
		return "disabled"
	case !st.Running:
		return fmt.Sprintf("%s, %s (not running)", st.Schedule, st.Timezone)
	default:
		return fmt.Sprintf("%s, %s, next %s", st.Schedule, st.Timezone, st.NextRun.Format("2006-01-02 15:04 MST"))
	}
}
