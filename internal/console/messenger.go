package console

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alekspetrov/taskpilot/internal/comms"
)

// ErrNotAttached is returned when a message is sent before a program is attached.
var ErrNotAttached = errors.New("console is not attached to a program")

// replyMsg carries one outbound bot message into the model.
type replyMsg struct {
	contextID string
	text      string
	format    comms.Format
}

// Messenger implements comms.Messenger by posting into a running program.
type Messenger struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// NewMessenger creates a detached console messenger.
func NewMessenger() *Messenger {
	return &Messenger{}
}

// Attach routes messages to p.
func (m *Messenger) Attach(p *tea.Program) {
	m.attach(p.Send)
}

func (m *Messenger) attach(send func(tea.Msg)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.send = send
}

// SendText implements comms.Messenger.
func (m *Messenger) SendText(ctx context.Context, contextID, text string, format comms.Format) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	send := m.send
	m.mu.RUnlock()

	if send == nil {
		return ErrNotAttached
	}
	send(replyMsg{contextID: contextID, text: text, format: format})
	return nil
}
