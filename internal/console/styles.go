package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles (muted terminal aesthetic)
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7eb8da")) // steel blue

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c9d1d9"))

	botStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7ec699")) // sage green

	boldStyle = lipgloss.NewStyle().Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a054")) // amber

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8b949e"))
)

// renderMarkdown renders the MarkdownV2 subset the bot emits: bold spans
// and backslash escapes.
func renderMarkdown(text string) string {
	var out, span strings.Builder
	bold, escaped := false, false

	flush := func() {
		if bold {
			out.WriteString(boldStyle.Render(span.String()))
		} else {
			out.WriteString(span.String())
		}
		span.Reset()
	}

	for _, r := range text {
		switch {
		case escaped:
			span.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '*':
			flush()
			bold = !bold
		default:
			span.WriteRune(r)
		}
	}
	flush()
	return out.String()
}
