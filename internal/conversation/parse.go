package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ValidationError reports user input that cannot be used as given.
type ValidationError struct {
	Field  string
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Input, e.Reason)
}

var (
	dateRe      = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	dateShapeRe = regexp.MustCompile(`^\d+/\d+/\d+$`)
)

// ParseDeadline parses a DD/MM/YYYY date. Impossible dates such as 31/02 are
// rejected rather than normalised.
func ParseDeadline(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, &ValidationError{Field: "deadline", Input: text, Reason: "expected DD/MM/YYYY"}
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month || d.Year() != year {
		return time.Time{}, &ValidationError{Field: "deadline", Input: text, Reason: "no such calendar date"}
	}
	return d, nil
}

// LooksLikeDate reports whether text has the shape of a numeric date, valid
// or not.
func LooksLikeDate(text string) bool {
	return dateShapeRe.MatchString(strings.TrimSpace(text))
}

// ParseTaskID parses a task id typed by the user.
func ParseTaskID(text string) (int64, error) {
	text = strings.TrimSpace(text)
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "task id", Input: text, Reason: "must be a number"}
	}
	return id, nil
}

func isSkipDeadline(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "-", "skip", "none":
		return true
	}
	return false
}
