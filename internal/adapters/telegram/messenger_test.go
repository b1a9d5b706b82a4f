package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/alekspetrov/taskpilot/internal/comms"
)

func TestChunkContent(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		maxLen     int
		wantChunks int
	}{
		{"short message", "hello", 10, 1},
		{"exact length", "0123456789", 10, 1},
		{"splits on newline", "line one\nline two\nline three", 12, 3},
		{"hard split without newlines", strings.Repeat("x", 25), 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := chunkContent(tt.content, tt.maxLen)
			if len(chunks) != tt.wantChunks {
				t.Errorf("got %d chunks, want %d: %q", len(chunks), tt.wantChunks, chunks)
			}
			for _, c := range chunks {
				if len(c) > tt.maxLen {
					t.Errorf("chunk %q longer than %d", c, tt.maxLen)
				}
			}
		})
	}
}

func TestChunkContentKeepsRunesWhole(t *testing.T) {
	content := strings.Repeat("🔹", 10) // 4 bytes each
	for _, c := range chunkContent(content, 10) {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %q is not valid UTF-8", c)
		}
	}
}

type capturedSend struct {
	text      string
	parseMode string
}

func newCaptureServer(t *testing.T) (*httptest.Server, func() []capturedSend) {
	t.Helper()

	var mu sync.Mutex
	var sent []capturedSend
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SendMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		sent = append(sent, capturedSend{text: req.Text, parseMode: req.ParseMode})
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(SendMessageResponse{OK: true, Result: &Result{MessageID: 1}})
	}))
	t.Cleanup(server.Close)

	return server, func() []capturedSend {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedSend(nil), sent...)
	}
}

func TestMessengerParseMode(t *testing.T) {
	tests := []struct {
		name      string
		plainText bool
		format    comms.Format
		wantMode  string
		wantText  string
	}{
		{"markdown", false, comms.FormatMarkdown, "MarkdownV2", `*bold* snake\_case`},
		{"plain request", false, comms.FormatPlain, "", `*bold* snake\_case`},
		{"plain text mode strips markdown", true, comms.FormatMarkdown, "", "bold snake_case"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, sent := newCaptureServer(t)
			m := NewTelegramMessenger(NewClientWithBaseURL("tok", server.URL), tt.plainText)

			if err := m.SendText(context.Background(), "1", `*bold* snake\_case`, tt.format); err != nil {
				t.Fatalf("SendText failed: %v", err)
			}

			got := sent()
			if len(got) != 1 {
				t.Fatalf("sent %d messages, want 1", len(got))
			}
			if got[0].parseMode != tt.wantMode || got[0].text != tt.wantText {
				t.Errorf("sent %+v, want mode %q text %q", got[0], tt.wantMode, tt.wantText)
			}
		})
	}
}

func TestMessengerChunksLongText(t *testing.T) {
	server, sent := newCaptureServer(t)
	m := NewTelegramMessenger(NewClientWithBaseURL("tok", server.URL), false)

	line := strings.Repeat("a", 99) + "\n"
	if err := m.SendText(context.Background(), "1", strings.Repeat(line, 100), comms.FormatPlain); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	if n := len(sent()); n != 3 {
		t.Errorf("sent %d chunks, want 3", n)
	}
}
