package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		hasError bool
	}{
		{"100", 100, false},
		{"100B", 100, false},
		{"64KB", 64 * 1024, false},
		{"10MB", 10 * 1024 * 1024, false},
		{"1GB", 1024 * 1024 * 1024, false},
		{"10mb", 10 * 1024 * 1024, false},
		{"0", 0, true},
		{"huge", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseSize(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("parseSize(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("parseSize(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRotatingFileRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.log")

	w, err := newRotatingFile(path, &RotationConfig{MaxSize: "16", MaxBackups: 2})
	if err != nil {
		t.Fatalf("newRotatingFile failed: %v", err)
	}
	defer func() { _ = w.Close() }()

	for _, line := range []string{"first-line-0001\n", "second-line-002\n", "third-line-0003\n", "fourth-line-004\n"} {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read current: %v", err)
	}
	if !strings.Contains(string(current), "fourth") {
		t.Errorf("current file = %q, want the latest line", current)
	}

	b1, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatalf("read backup 1: %v", err)
	}
	if !strings.Contains(string(b1), "third") {
		t.Errorf("backup 1 = %q, want third line", b1)
	}

	if _, err := os.Stat(path + ".2"); err != nil {
		t.Errorf("expected backup 2: %v", err)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf("backup 3 should have been pruned, stat err = %v", err)
	}
}

func TestRotatingFileDefaults(t *testing.T) {
	w, err := newRotatingFile(filepath.Join(t.TempDir(), "a.log"), nil)
	if err != nil {
		t.Fatalf("newRotatingFile failed: %v", err)
	}
	defer func() { _ = w.Close() }()

	rf := w.(*rotatingFile)
	if rf.maxSize != defaultMaxSize || rf.maxBackups != defaultMaxBackups {
		t.Errorf("defaults = %d/%d", rf.maxSize, rf.maxBackups)
	}
}
