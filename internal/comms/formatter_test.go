package comms

import (
	"strings"
	"testing"
	"time"

	"github.com/alekspetrov/taskpilot/internal/tasks"
)

func TestUrgencyOf(t *testing.T) {
	today := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	at := func(offset int) *tasks.Task {
		d := today.AddDate(0, 0, offset)
		return &tasks.Task{Deadline: &d}
	}

	tests := []struct {
		name string
		task *tasks.Task
		want Urgency
	}{
		{"no deadline", &tasks.Task{}, UrgencyNone},
		{"overdue", at(-1), UrgencyOverdue},
		{"today", at(0), UrgencyDueToday},
		{"tomorrow", at(1), UrgencyDueSoon},
		{"edge of soon", at(dueSoonDays), UrgencyDueSoon},
		{"far away", at(dueSoonDays + 1), UrgencyOnTrack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UrgencyOf(tt.task, today); got != tt.want {
				t.Errorf("UrgencyOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatTaskListEmpty(t *testing.T) {
	got := FormatTaskList(nil, time.Now())
	if !strings.Contains(got, "empty") {
		t.Errorf("FormatTaskList(nil) = %q", got)
	}
}

func TestFormatTaskList(t *testing.T) {
	today := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	overdue := today.AddDate(0, 0, -2)
	list := []*tasks.Task{
		{ID: 3, Title: "pay_rent", Deadline: &overdue},
		{ID: 7, Title: "read"},
	}

	got := FormatTaskList(list, today)

	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, blank and 2 task lines, got %q", got)
	}
	if !strings.Contains(lines[2], `pay\_rent`) || !strings.Contains(lines[2], "ID: 3") ||
		!strings.Contains(lines[2], "🔴") || !strings.Contains(lines[2], "08/06/2026") {
		t.Errorf("overdue line = %q", lines[2])
	}
	if !strings.Contains(lines[3], "ID: 7") || !strings.Contains(lines[3], "⚪") || strings.Contains(lines[3], ", deadline") {
		t.Errorf("no-deadline line = %q", lines[3])
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"snake_case", `snake\_case`},
		{"*bold* `code` [link]", "\\*bold\\* \\`code\\` \\[link\\]"},
		{"(ID: 3) - done.", `\(ID: 3\) \- done\.`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		if got := EscapeMarkdown(tt.input); got != tt.want {
			t.Errorf("EscapeMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatTaskListEscapesInsideBold(t *testing.T) {
	list := []*tasks.Task{{ID: 1, Title: "2*2 review"}}

	got := FormatTaskList(list, time.Now())

	want := "🔹 *2\\*2 review* \\(ID: 1\\) \\- ⚪ no deadline"
	if !strings.HasSuffix(got, want) {
		t.Errorf("FormatTaskList() = %q, want suffix %q", got, want)
	}
	// Every unescaped asterisk opens or closes a bold span, so they must pair up.
	if n := strings.Count(got, "*") - strings.Count(got, `\*`); n%2 != 0 {
		t.Errorf("unbalanced bold markers in %q", got)
	}
}

func TestStripMarkdown(t *testing.T) {
	list := []*tasks.Task{{ID: 4, Title: "a_b *c* (d)"}}

	got := StripMarkdown(FormatTaskList(list, time.Now()))
	if !strings.Contains(got, "🔹 a_b *c* (d) (ID: 4) - ⚪ no deadline") {
		t.Errorf("StripMarkdown() = %q", got)
	}
	if strings.Contains(got, `\`) {
		t.Errorf("escape left in %q", got)
	}
}
