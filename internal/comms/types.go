// Package comms routes inbound chat messages to bot commands or to the
// sender's open conversation flow.
package comms

import (
	"context"
)

// IncomingMessage is the transport-neutral form of one inbound message.
type IncomingMessage struct {
	ContextID string // chat to reply into
	SenderID  string // user who sent it; owns the tasks
	Username  string // display name, used in greetings
	Text      string
}

// OwnerID returns the identity tasks and flows are keyed by.
func (m *IncomingMessage) OwnerID() string {
	if m.SenderID != "" {
		return m.SenderID
	}
	return m.ContextID
}

// Format selects how a transport should render outbound text.
type Format string

const (
	FormatPlain    Format = ""
	FormatMarkdown Format = "MarkdownV2"
)

// Messenger delivers outbound text. Implementations are best effort: an
// error means the message was not delivered and is never retried.
type Messenger interface {
	SendText(ctx context.Context, contextID, text string, format Format) error
}
