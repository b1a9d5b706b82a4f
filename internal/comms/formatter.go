package comms

import (
	"fmt"
	"strings"
	"time"

	"github.com/alekspetrov/taskpilot/internal/tasks"
)

// Urgency classifies how close a task's deadline is.
type Urgency int

const (
	UrgencyNone Urgency = iota
	UrgencyOnTrack
	UrgencyDueSoon
	UrgencyDueToday
	UrgencyOverdue
)

// dueSoonDays is the widest gap, in days, still shown as due soon.
const dueSoonDays = 3

// UrgencyOf classifies t relative to today.
func UrgencyOf(t *tasks.Task, today time.Time) Urgency {
	days, ok := t.DaysLeft(today)
	switch {
	case !ok:
		return UrgencyNone
	case days < 0:
		return UrgencyOverdue
	case days == 0:
		return UrgencyDueToday
	case days <= dueSoonDays:
		return UrgencyDueSoon
	default:
		return UrgencyOnTrack
	}
}

// Icon returns the indicator shown next to a task.
func (u Urgency) Icon() string {
	switch u {
	case UrgencyOverdue:
		return "🔴"
	case UrgencyDueToday:
		return "🟠"
	case UrgencyDueSoon:
		return "🟡"
	case UrgencyOnTrack:
		return "🟢"
	default:
		return "⚪"
	}
}

func (u Urgency) String() string {
	switch u {
	case UrgencyOverdue:
		return "overdue"
	case UrgencyDueToday:
		return "due today"
	case UrgencyDueSoon:
		return "due soon"
	case UrgencyOnTrack:
		return "on track"
	default:
		return "no deadline"
	}
}

// FormatTaskList renders active tasks as Telegram MarkdownV2.
func FormatTaskList(list []*tasks.Task, today time.Time) string {
	if len(list) == 0 {
		return EscapeMarkdown("📋 Your task list is empty. Add one with /addtask.")
	}

	var sb strings.Builder
	sb.WriteString("📋 *Active tasks*\n\n")
	for _, t := range list {
		u := UrgencyOf(t, today)
		line := fmt.Sprintf(" (ID: %d) - %s %s", t.ID, u.Icon(), u)
		if dl := t.DeadlineText(); dl != "" {
			line += fmt.Sprintf(", deadline %s", dl)
		}
		sb.WriteString("🔹 *" + EscapeMarkdown(t.Title) + "*" + EscapeMarkdown(line) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// markdownSpecials are the characters MarkdownV2 requires escaped outside
// code spans, inside entities included.
const markdownSpecials = "\\_*[]()~`>#+-=|{}.!"

var markdownEscaper = func() *strings.Replacer {
	var pairs []string
	for _, c := range markdownSpecials {
		pairs = append(pairs, string(c), "\\"+string(c))
	}
	return strings.NewReplacer(pairs...)
}()

// EscapeMarkdown escapes text for use as literal MarkdownV2 content.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// StripMarkdown turns MarkdownV2 the bot produced back into plain text:
// escapes are resolved and bold markers dropped.
func StripMarkdown(text string) string {
	var sb strings.Builder
	escaped := false
	for _, r := range text {
		switch {
		case escaped:
			sb.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '*':
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
