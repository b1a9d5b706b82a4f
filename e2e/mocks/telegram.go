package mocks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alekspetrov/taskpilot/internal/adapters/telegram"
)

// emptyPollWait bounds how long getUpdates blocks when nothing is queued.
const emptyPollWait = 50 * time.Millisecond

// TelegramMock is a fake Bot API server. It serves queued updates to
// getUpdates and keeps every sendMessage request.
type TelegramMock struct {
	server  *httptest.Server
	mu      sync.Mutex
	updates []*telegram.Update
	sent    []telegram.SendMessageRequest
	nextID  int64
	nextMsg int64
	notify  chan struct{}

	conflict bool
}

// NewTelegramMock creates and starts a fake Bot API server.
func NewTelegramMock() *TelegramMock {
	m := &TelegramMock{
		nextID:  1,
		nextMsg: 1,
		notify:  make(chan struct{}, 1),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handleRequest))
	return m
}

// URL returns the base URL of the mock server.
func (m *TelegramMock) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *TelegramMock) Close() {
	m.server.Close()
}

// SetConflict makes getUpdates answer 409 as if another poller were active.
func (m *TelegramMock) SetConflict(on bool) {
	m.mu.Lock()
	m.conflict = on
	m.mu.Unlock()
}

// SendUserText queues a private-chat message from userID.
func (m *TelegramMock) SendUserText(userID int64, firstName, text string) int64 {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.updates = append(m.updates, &telegram.Update{
		UpdateID: id,
		Message: &telegram.Message{
			MessageID: id,
			From:      &telegram.User{ID: userID, FirstName: firstName},
			Chat:      &telegram.Chat{ID: userID, Type: "private"},
			Date:      time.Now().Unix(),
			Text:      text,
		},
	})
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return id
}

// Sent returns every message sent to chatID, oldest first.
func (m *TelegramMock) Sent(chatID int64) []telegram.SendMessageRequest {
	want := strconv.FormatInt(chatID, 10)

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []telegram.SendMessageRequest
	for _, req := range m.sent {
		if req.ChatID == want {
			out = append(out, req)
		}
	}
	return out
}

// WaitForMessages waits until chatID has received at least n messages or
// timeout passes, and returns what was received.
func (m *TelegramMock) WaitForMessages(chatID int64, n int, timeout time.Duration) []telegram.SendMessageRequest {
	deadline := time.Now().Add(timeout)
	for {
		got := m.Sent(chatID)
		if len(got) >= n || time.Now().After(deadline) {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Pending returns how many queued updates have not been acknowledged.
func (m *TelegramMock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.updates)
}

func (m *TelegramMock) handleRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Paths look like /bot<token>/<method>.
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	switch method {
	case "getUpdates":
		m.handleGetUpdates(w, r)
	case "sendMessage":
		m.handleSendMessage(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": false, "error_code": 404, "description": "Not Found",
		})
	}
}

func (m *TelegramMock) handleGetUpdates(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	conflict := m.conflict
	m.mu.Unlock()
	if conflict {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(telegram.GetUpdatesResponse{
			OK:          false,
			ErrorCode:   http.StatusConflict,
			Description: "Conflict: terminated by other getUpdates request",
		})
		return
	}

	offset, _ := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 64)

	batch := m.ack(offset)
	if len(batch) == 0 {
		select {
		case <-m.notify:
		case <-time.After(emptyPollWait):
		case <-r.Context().Done():
			return
		}
		batch = m.ack(offset)
	}

	_ = json.NewEncoder(w).Encode(telegram.GetUpdatesResponse{OK: true, Result: batch})
}

// ack drops updates below offset, as Telegram does, and returns the rest.
func (m *TelegramMock) ack(offset int64) []*telegram.Update {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.updates[:0]
	for _, u := range m.updates {
		if u.UpdateID >= offset {
			kept = append(kept, u)
		}
	}
	m.updates = kept
	return append([]*telegram.Update(nil), kept...)
}

func (m *TelegramMock) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req telegram.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(telegram.SendMessageResponse{
			OK: false, ErrorCode: http.StatusBadRequest, Description: "Bad Request: " + err.Error(),
		})
		return
	}

	m.mu.Lock()
	m.sent = append(m.sent, req)
	id := m.nextMsg
	m.nextMsg++
	m.mu.Unlock()

	_ = json.NewEncoder(w).Encode(telegram.SendMessageResponse{
		OK:     true,
		Result: &telegram.Result{MessageID: id},
	})
}
