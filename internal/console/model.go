// Package console is a terminal chat with the task bot, for local use
// without Telegram.
package console

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alekspetrov/taskpilot/internal/banner"
	"github.com/alekspetrov/taskpilot/internal/comms"
)

const (
	// maxLines bounds the transcript kept on screen.
	maxLines = 200
	// inboxSize bounds input typed faster than the handler answers.
	inboxSize = 32
)

// Handler processes one inbound message.
type Handler interface {
	HandleMessage(ctx context.Context, msg *comms.IncomingMessage)
}

type line struct {
	fromUser bool
	text     string
}

// Model is the TUI model
type Model struct {
	handler  Handler
	ownerID  string
	username string
	version  string
	inbox    chan *comms.IncomingMessage
	lines    []line
	input    []rune
	width    int
	height   int
	quitting bool
}

// NewModel creates a console bound to one owner.
func NewModel(handler Handler, ownerID, username, version string) Model {
	return Model{
		handler:  handler,
		ownerID:  ownerID,
		username: username,
		version:  version,
		inbox:    make(chan *comms.IncomingMessage, inboxSize),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	m.enqueue("/start")
	return nil
}

// enqueue queues text for serve. It never blocks the UI; it reports false
// when the queue is full.
func (m Model) enqueue(text string) bool {
	msg := &comms.IncomingMessage{
		ContextID: m.ownerID,
		SenderID:  m.ownerID,
		Username:  m.username,
		Text:      text,
	}
	select {
	case m.inbox <- msg:
		return true
	default:
		return false
	}
}

// serve hands queued input to the handler one message at a time, in the
// order it was typed, until ctx is done. Replies arrive as replyMsg through
// the Messenger.
func (m Model) serve(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-m.inbox:
			m.handler.HandleMessage(ctx, msg)
		}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(string(m.input))
			m.input = m.input[:0]
			if text == "" {
				return m, nil
			}
			m.appendLine(line{fromUser: true, text: text})
			if !m.enqueue(text) {
				m.appendLine(line{text: "⚠️ Still working on earlier messages, try again in a moment."})
			}
			return m, nil
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		case tea.KeySpace:
			m.input = append(m.input, ' ')
		case tea.KeyRunes:
			m.input = append(m.input, msg.Runes...)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case replyMsg:
		text := msg.text
		if msg.format == comms.FormatMarkdown {
			text = renderMarkdown(text)
		}
		m.appendLine(line{text: text})
	}

	return m, nil
}

func (m *Model) appendLine(l line) {
	m.lines = append(m.lines, l)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Bye.\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", banner.Name, m.version)))
	b.WriteString("\n\n")

	lines := m.lines
	// Keep the newest lines when the terminal is short; header and footer
	// take four rows.
	if m.height > 4 && len(lines) > m.height-4 {
		lines = lines[len(lines)-(m.height-4):]
	}
	for _, l := range lines {
		if l.fromUser {
			b.WriteString(userStyle.Render("you › " + l.text))
		} else {
			b.WriteString(botStyle.Render("bot › ") + l.text)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(promptStyle.Render("› ") + string(m.input) + "█\n")
	b.WriteString(helpStyle.Render("enter: send  esc: quit"))
	return b.String()
}

// Run starts an interactive console for ownerID and blocks until the user
// quits or ctx is cancelled. messenger must be the one the handler replies
// through.
func Run(ctx context.Context, handler Handler, messenger *Messenger, ownerID, username, version string) error {
	model := NewModel(handler, ownerID, username, version)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	messenger.Attach(p)
	defer messenger.attach(nil)

	serveCtx, stop := context.WithCancel(ctx)
	defer stop()
	go model.serve(serveCtx)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("console failed: %w", err)
	}
	return nil
}
