package comms

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/alekspetrov/taskpilot/internal/conversation"
	"github.com/alekspetrov/taskpilot/internal/logging"
	"github.com/alekspetrov/taskpilot/internal/tasks"
)

// TaskLister reads an owner's active tasks.
type TaskLister interface {
	ListActive(ctx context.Context, ownerID string) ([]*tasks.Task, error)
}

// HandlerConfig holds the collaborators of a Handler.
type HandlerConfig struct {
	Messenger Messenger
	Tasks     TaskLister
	Machine   *conversation.Machine
	RateLimit *RateLimitConfig
	// Location decides what "today" is for urgency indicators. Defaults to UTC.
	Location *time.Location
	Log      *slog.Logger
}

// Handler is the command dispatcher: every inbound message goes through
// HandleMessage.
type Handler struct {
	messenger Messenger
	tasks     TaskLister
	machine   *conversation.Machine
	rateLimit *RateLimiter
	loc       *time.Location
	now       func() time.Time
	log       *slog.Logger
}

// NewHandler creates a Handler from cfg.
func NewHandler(cfg *HandlerConfig) *Handler {
	lg := cfg.Log
	if lg == nil {
		lg = logging.WithComponent("comms")
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Handler{
		messenger: cfg.Messenger,
		tasks:     cfg.Tasks,
		machine:   cfg.Machine,
		rateLimit: NewRateLimiter(cfg.RateLimit),
		loc:       loc,
		now:       time.Now,
		log:       lg,
	}
}

// HandleMessage processes one inbound message. A recognised command runs,
// replacing any open flow it conflicts with, except that a bare keyword
// without the leading slash is flow input while a flow is open. Other text
// goes to the sender's open flow, or is ignored when there is none.
func (h *Handler) HandleMessage(ctx context.Context, msg *IncomingMessage) {
	owner := msg.OwnerID()
	ctx = logging.ContextWithOwner(ctx, owner)
	ctx = logging.ContextWithCorrelationID(ctx, uuid.NewString())
	lg := logging.FromContext(ctx, h.log)

	defer func() {
		if r := recover(); r != nil {
			lg.Error("Panic while handling message",
				slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
		}
	}()

	if !h.rateLimit.AllowMessage(owner) {
		lg.Warn("Message rate limit exceeded")
		h.reply(ctx, msg.ContextID, "⚠️ You are sending messages too quickly. Please wait a moment.", FormatPlain)
		return
	}

	active := h.machine.Active(owner)

	// Inside a flow only slash commands preempt; "complete tax return" is a title.
	if cmd, ok := ParseCommand(msg.Text); ok && (!active || isSlashCommand(msg.Text)) {
		lg.Debug("Dispatching command", slog.String("command", cmd.Name))
		h.handleCommand(ctx, msg, cmd)
		return
	}

	if active {
		mode := h.machine.Mode(owner)
		reply := h.machine.Advance(ctx, owner, msg.Text)
		lg.Debug("Advanced conversation",
			slog.String("from", string(mode)), slog.String("to", string(h.machine.Mode(owner))))
		h.reply(ctx, msg.ContextID, reply, FormatPlain)
		return
	}

	lg.Debug("Ignoring message outside any command or flow")
}

// Sweep drops expired conversations and idle rate-limit buckets. Transports
// call it periodically.
func (h *Handler) Sweep() {
	if expired := h.machine.ExpireStale(); len(expired) > 0 {
		h.log.Info("Expired idle conversations", slog.Int("count", len(expired)))
	}
	h.rateLimit.Cleanup(time.Hour)
}

func (h *Handler) today() time.Time {
	return tasks.Day(h.now().In(h.loc))
}

// reply sends text once; failures are logged and dropped.
func (h *Handler) reply(ctx context.Context, contextID, text string, format Format) {
	if text == "" {
		return
	}
	if err := h.messenger.SendText(ctx, contextID, text, format); err != nil {
		logging.FromContext(ctx, h.log).Warn("Failed to send reply",
			slog.String("context_id", contextID), slog.Any("error", err))
	}
}

func greeting(username string) string {
	name := ""
	if username != "" {
		name = fmt.Sprintf(", %s", username)
	}
	return fmt.Sprintf("👋 Welcome to Task Pilot%s! 📋\n\n"+
		"I keep track of your tasks and remind you the day before they are due.\n\n"+
		"Send /help to see what I can do.", name)
}
