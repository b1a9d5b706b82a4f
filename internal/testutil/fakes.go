package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alekspetrov/taskpilot/internal/comms"
	"github.com/alekspetrov/taskpilot/internal/tasks"
)

// OpenStore opens a task store in a temp dir, closed at test cleanup.
func OpenStore(t testing.TB) *tasks.Store {
	t.Helper()

	store, err := tasks.Open(&tasks.Config{
		Driver: tasks.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "tasks.db"),
	})
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// SentMessage is one message captured by a RecordingMessenger.
type SentMessage struct {
	ContextID string
	Text      string
	Format    comms.Format
}

// RecordingMessenger is a comms.Messenger that keeps every message.
type RecordingMessenger struct {
	mu   sync.Mutex
	sent []SentMessage
}

// SendText implements comms.Messenger.
func (r *RecordingMessenger) SendText(_ context.Context, contextID, text string, format comms.Format) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, SentMessage{ContextID: contextID, Text: text, Format: format})
	return nil
}

// Sent returns a copy of everything sent so far.
func (r *RecordingMessenger) Sent() []SentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SentMessage(nil), r.sent...)
}

// SentTo returns the messages addressed to contextID.
func (r *RecordingMessenger) SentTo(contextID string) []SentMessage {
	var out []SentMessage
	for _, m := range r.Sent() {
		if m.ContextID == contextID {
			out = append(out, m)
		}
	}
	return out
}
