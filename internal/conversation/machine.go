package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alekspetrov/taskpilot/internal/logging"
	"github.com/alekspetrov/taskpilot/internal/tasks"
)

// TaskStore is the part of the task store the flows write to.
type TaskStore interface {
	Get(ctx context.Context, id int64, ownerID string) (*tasks.Task, error)
	Create(ctx context.Context, ownerID, title string, deadline *time.Time) (int64, error)
	Complete(ctx context.Context, id int64, ownerID string) (bool, error)
	Delete(ctx context.Context, id int64, ownerID string) (bool, error)
}

// User-facing prompts and results.
const (
	PromptTitle      = "📝 Send me the name of the task you want to add."
	PromptDeadline   = "📅 Now send the deadline in DD/MM/YYYY format, or \"skip\" for no deadline."
	PromptDeleteID   = "🗑 Send the ID of the task you want to delete."
	PromptCompleteID = "✅ Send the ID of the task you want to mark as done."

	MsgEmptyTitle   = "❌ The task name cannot be empty. Send the name of the task."
	MsgBadDate      = "❌ Wrong date format. Use DD/MM/YYYY."
	MsgBadID        = "❌ The task ID must be a number. Start again with the command."
	MsgStoreFailure = "⚠️ Something went wrong while saving your tasks. Please try again later."
)

// Machine drives the add, remove and complete flows. It owns every write to
// the StateStore.
type Machine struct {
	store  TaskStore
	states *StateStore
	log    *slog.Logger
}

// NewMachine creates a Machine over store and states.
func NewMachine(store TaskStore, states *StateStore) *Machine {
	return &Machine{
		store:  store,
		states: states,
		log:    logging.WithComponent("conversation"),
	}
}

// Mode returns the step the owner's flow is waiting on.
func (m *Machine) Mode(ownerID string) Mode {
	return m.states.Get(ownerID).Mode
}

// Active reports whether the owner has a flow open.
func (m *Machine) Active(ownerID string) bool {
	return m.Mode(ownerID) != ModeIdle
}

// BeginAdd opens the add flow at the title step, replacing any open flow.
func (m *Machine) BeginAdd(ownerID string) string {
	m.states.Set(ownerID, State{Mode: ModeAwaitingTitle})
	return PromptTitle
}

// BeginAddWithTitle opens the add flow at the deadline step.
func (m *Machine) BeginAddWithTitle(ownerID, title string) {
	m.states.Set(ownerID, State{Mode: ModeAwaitingDeadline, PendingTitle: title})
}

// BeginRemove opens the remove flow.
func (m *Machine) BeginRemove(ownerID string) string {
	m.states.Set(ownerID, State{Mode: ModeAwaitingDeleteID})
	return PromptDeleteID
}

// BeginComplete opens the complete flow.
func (m *Machine) BeginComplete(ownerID string) string {
	m.states.Set(ownerID, State{Mode: ModeAwaitingCompleteID})
	return PromptCompleteID
}

// Cancel closes any open flow and reports whether there was one.
func (m *Machine) Cancel(ownerID string) bool {
	return m.states.Clear(ownerID)
}

// ExpireStale drops flows that have been idle past the store's ttl and
// returns the affected owners.
func (m *Machine) ExpireStale() []string {
	expired := m.states.Expire()
	for _, owner := range expired {
		m.log.Debug("Conversation expired", slog.String("owner_id", owner))
	}
	return expired
}

// Advance feeds one message into the owner's open flow and returns the reply.
// It returns "" when the owner has no open flow.
func (m *Machine) Advance(ctx context.Context, ownerID, text string) string {
	st := m.states.Get(ownerID)

	switch st.Mode {
	case ModeAwaitingTitle:
		title := strings.TrimSpace(text)
		if title == "" {
			return MsgEmptyTitle
		}
		m.states.Set(ownerID, State{Mode: ModeAwaitingDeadline, PendingTitle: title})
		return PromptDeadline

	case ModeAwaitingDeadline:
		var deadline *time.Time
		if !isSkipDeadline(text) {
			d, err := ParseDeadline(text)
			if err != nil {
				// Stay on this step; the user may retry.
				return MsgBadDate
			}
			deadline = &d
		}
		m.states.Clear(ownerID)
		return m.CreateTask(ctx, ownerID, st.PendingTitle, deadline)

	case ModeAwaitingDeleteID:
		m.states.Clear(ownerID)
		id, err := ParseTaskID(text)
		if err != nil {
			return MsgBadID
		}
		return m.RemoveTask(ctx, ownerID, id)

	case ModeAwaitingCompleteID:
		m.states.Clear(ownerID)
		id, err := ParseTaskID(text)
		if err != nil {
			return MsgBadID
		}
		return m.CompleteTask(ctx, ownerID, id)
	}

	return ""
}

// CreateTask stores a task and returns the confirmation for the user.
func (m *Machine) CreateTask(ctx context.Context, ownerID, title string, deadline *time.Time) string {
	id, err := m.store.Create(ctx, ownerID, title, deadline)
	if err != nil {
		logging.FromContext(ctx, m.log).Error("Failed to create task", slog.Any("error", err))
		return MsgStoreFailure
	}

	logging.FromContext(logging.ContextWithTask(ctx, id), m.log).Info("Task created")
	if deadline == nil {
		return fmt.Sprintf("✅ Task '%s' added (ID: %d).", title, id)
	}
	return fmt.Sprintf("✅ Task '%s' with deadline %s added (ID: %d).", title, deadline.Format(tasks.DateLayout), id)
}

// lookup fetches an owned task so replies can name it. The returned reply is
// non-empty when the caller should stop.
func (m *Machine) lookup(ctx context.Context, ownerID string, id int64) (*tasks.Task, string) {
	ctx = logging.ContextWithTask(ctx, id)
	t, err := m.store.Get(ctx, id, ownerID)
	if errors.Is(err, tasks.ErrNotFound) {
		return nil, fmt.Sprintf("Task with ID %d not found.", id)
	}
	if err != nil {
		logging.FromContext(ctx, m.log).Error("Failed to load task", slog.Any("error", err))
		return nil, MsgStoreFailure
	}
	return t, ""
}

// RemoveTask deletes an owned task and returns the result for the user.
func (m *Machine) RemoveTask(ctx context.Context, ownerID string, id int64) string {
	t, reply := m.lookup(ctx, ownerID, id)
	if reply != "" {
		return reply
	}

	ok, err := m.store.Delete(ctx, id, ownerID)
	if err != nil {
		logging.FromContext(logging.ContextWithTask(ctx, id), m.log).Error("Failed to delete task", slog.Any("error", err))
		return MsgStoreFailure
	}
	if !ok {
		// Deleted concurrently.
		return fmt.Sprintf("Task with ID %d not found.", id)
	}
	return fmt.Sprintf("🗑 Task '%s' (ID: %d) deleted.", t.Title, id)
}

// CompleteTask marks an owned task done and returns the result for the user.
func (m *Machine) CompleteTask(ctx context.Context, ownerID string, id int64) string {
	t, reply := m.lookup(ctx, ownerID, id)
	if reply != "" {
		return reply
	}
	if t.Completed {
		return fmt.Sprintf("Task '%s' (ID: %d) is already completed.", t.Title, id)
	}

	ok, err := m.store.Complete(ctx, id, ownerID)
	if err != nil {
		logging.FromContext(logging.ContextWithTask(ctx, id), m.log).Error("Failed to complete task", slog.Any("error", err))
		return MsgStoreFailure
	}
	if !ok {
		return fmt.Sprintf("Task with ID %d not found or already completed.", id)
	}
	return fmt.Sprintf("🎉 Task '%s' (ID: %d) marked as done.", t.Title, id)
}
