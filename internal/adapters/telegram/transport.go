// Package telegram connects the task bot to the Telegram Bot API.
package telegram

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alekspetrov/taskpilot/internal/comms"
	"github.com/alekspetrov/taskpilot/internal/logging"
)

// Config holds Telegram settings.
type Config struct {
	Enabled    bool    `yaml:"enabled"`
	BotToken   string  `yaml:"bot_token"`
	AllowedIDs []int64 `yaml:"allowed_ids"` // user/chat IDs allowed to talk to the bot; empty allows all
	PlainText  bool    `yaml:"plain_text"`  // send without parse mode
	// PollTimeout is the long-poll timeout in seconds.
	PollTimeout int `yaml:"poll_timeout"`
}

// DefaultConfig returns default Telegram configuration
func DefaultConfig() *Config {
	return &Config{
		Enabled:     true,
		PollTimeout: 30,
	}
}

// MessageHandler processes inbound messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *comms.IncomingMessage)
	Sweep()
}

const (
	retryDelay      = time.Second
	cleanupInterval = time.Minute
)

// Transport handles Telegram polling and delegates message processing to the
// handler, one update at a time.
type Transport struct {
	client      *Client
	handler     MessageHandler
	allowedIDs  map[int64]bool
	pollTimeout int
	offset      int64 // next update ID to request
	mu          sync.Mutex
	stopCh      chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	log         *slog.Logger
}

// NewTransport creates a new Telegram transport layer.
func NewTransport(client *Client, handler MessageHandler, cfg *Config) *Transport {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	allowed := make(map[int64]bool, len(cfg.AllowedIDs))
	for _, id := range cfg.AllowedIDs {
		allowed[id] = true
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 30
	}

	return &Transport{
		client:      client,
		handler:     handler,
		allowedIDs:  allowed,
		pollTimeout: timeout,
		stopCh:      make(chan struct{}),
		log:         logging.WithComponent("telegram"),
	}
}

// StartPolling begins the long-polling and cleanup loops in goroutines.
func (t *Transport) StartPolling(ctx context.Context) {
	t.wg.Add(1)
	go t.pollLoop(ctx)

	t.wg.Add(1)
	go t.cleanupLoop(ctx)
}

// Stop stops both loops and waits for the update in flight to finish.
func (t *Transport) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
	t.wg.Wait()
}

func (t *Transport) pollLoop(ctx context.Context) {
	defer t.wg.Done()

	// Cancel the in-flight long poll when Stop is called.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-t.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	t.log.Debug("Transport poll loop started")

	for {
		select {
		case <-ctx.Done():
			t.log.Debug("Transport poll loop stopped")
			return
		default:
			t.fetchAndProcess(ctx)
		}
	}
}

// cleanupLoop expires abandoned conversations periodically.
func (t *Transport) cleanupLoop(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.handler.Sweep()
		}
	}
}

// fetchAndProcess fetches one batch of updates and processes them. A failed
// fetch backs off briefly and is retried by the caller.
func (t *Transport) fetchAndProcess(ctx context.Context) {
	t.mu.Lock()
	offset := t.offset
	t.mu.Unlock()

	updates, err := t.client.GetUpdates(ctx, offset, t.pollTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		t.log.Warn("Error fetching updates", slog.Any("error", err))
		select {
		case <-ctx.Done():
		case <-time.After(retryDelay):
		}
		return
	}

	for _, update := range updates {
		t.processUpdate(ctx, update)

		// Acknowledge even when processing failed so a poison update is not
		// redelivered forever.
		t.mu.Lock()
		if update.UpdateID >= t.offset {
			t.offset = update.UpdateID + 1
		}
		t.mu.Unlock()
	}
}

func (t *Transport) processUpdate(ctx context.Context, update *Update) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("Panic while processing update",
				slog.Int64("update_id", update.UpdateID),
				slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
		}
	}()

	msg := update.Message
	if msg == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}

	if !t.isAllowed(msg) {
		t.log.Debug("Ignoring message from unauthorized chat/user", slog.Int64("chat_id", msg.Chat.ID))
		return
	}

	in := &comms.IncomingMessage{
		ContextID: strconv.FormatInt(msg.Chat.ID, 10),
		Text:      strings.TrimSpace(msg.Text),
	}
	if msg.From != nil {
		in.SenderID = strconv.FormatInt(msg.From.ID, 10)
		in.Username = msg.From.FirstName
		if in.Username == "" {
			in.Username = msg.From.Username
		}
	}

	t.handler.HandleMessage(ctx, in)
}

// isAllowed checks the chat and the sender against the allowlist.
func (t *Transport) isAllowed(msg *Message) bool {
	if len(t.allowedIDs) == 0 {
		return true
	}
	if t.allowedIDs[msg.Chat.ID] {
		return true
	}
	return msg.From != nil && t.allowedIDs[msg.From.ID]
}
