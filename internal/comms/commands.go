package comms

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alekspetrov/taskpilot/internal/conversation"
	"github.com/alekspetrov/taskpilot/internal/logging"
)

// Command names. Matching is case-sensitive.
const (
	CmdStart      = "start"
	CmdHelp       = "help"
	CmdAddTask    = "addtask"
	CmdViewTask   = "viewtask"
	CmdRemoveTask = "removetask"
	CmdComplete   = "complete"
	CmdCancel     = "cancel"
)

var knownCommands = map[string]bool{
	CmdStart:      true,
	CmdHelp:       true,
	CmdAddTask:    true,
	CmdViewTask:   true,
	CmdRemoveTask: true,
	CmdComplete:   true,
	CmdCancel:     true,
}

const helpText = `🧭 Task Pilot commands

/start - Start the bot
/help - Show this guide
/addtask - Add a task (or: /addtask <title> [DD/MM/YYYY])
/viewtask - List your active tasks
/removetask - Delete a task by ID (or: /removetask <id>)
/complete - Mark a task as done
/cancel - Abandon the current step-by-step command`

// Command is a parsed bot command.
type Command struct {
	Name string
	Args []string
}

// ParseCommand recognises "name", "/name" and "/name@botname" followed by
// optional whitespace separated arguments.
func ParseCommand(text string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{}, false
	}

	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if !knownCommands[name] {
		return Command{}, false
	}
	return Command{Name: name, Args: fields[1:]}, true
}

func isSlashCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

func (h *Handler) handleCommand(ctx context.Context, msg *IncomingMessage, cmd Command) {
	owner := msg.OwnerID()

	switch cmd.Name {
	case CmdStart:
		h.reply(ctx, msg.ContextID, greeting(msg.Username), FormatPlain)
	case CmdHelp:
		h.reply(ctx, msg.ContextID, helpText, FormatPlain)
	case CmdAddTask:
		h.reply(ctx, msg.ContextID, h.handleAddTask(ctx, owner, cmd.Args), FormatPlain)
	case CmdViewTask:
		h.handleViewTask(ctx, msg.ContextID, owner)
	case CmdRemoveTask:
		h.reply(ctx, msg.ContextID, h.handleRemoveTask(ctx, owner, cmd.Args), FormatPlain)
	case CmdComplete:
		h.reply(ctx, msg.ContextID, h.machine.BeginComplete(owner), FormatPlain)
	case CmdCancel:
		if h.machine.Cancel(owner) {
			h.reply(ctx, msg.ContextID, "👌 Cancelled.", FormatPlain)
		} else {
			h.reply(ctx, msg.ContextID, "Nothing to cancel.", FormatPlain)
		}
	}
}

// handleAddTask creates the task straight away when the arguments carry a
// title and either a valid date or no date at all. A date-shaped but invalid
// last argument parks the title at the deadline step; anything else starts
// the step-by-step flow.
func (h *Handler) handleAddTask(ctx context.Context, owner string, args []string) string {
	if len(args) == 0 {
		return h.machine.BeginAdd(owner)
	}

	last := args[len(args)-1]
	if !conversation.LooksLikeDate(last) {
		h.machine.Cancel(owner)
		return h.machine.CreateTask(ctx, owner, strings.Join(args, " "), nil)
	}

	title := strings.Join(args[:len(args)-1], " ")
	if title == "" {
		return h.machine.BeginAdd(owner)
	}

	deadline, err := conversation.ParseDeadline(last)
	if err != nil {
		h.machine.BeginAddWithTitle(owner, title)
		return conversation.MsgBadDate
	}
	h.machine.Cancel(owner)
	return h.machine.CreateTask(ctx, owner, title, &deadline)
}

func (h *Handler) handleRemoveTask(ctx context.Context, owner string, args []string) string {
	if len(args) == 0 {
		return h.machine.BeginRemove(owner)
	}

	h.machine.Cancel(owner)
	id, err := conversation.ParseTaskID(args[0])
	if err != nil {
		return conversation.MsgBadID
	}
	return h.machine.RemoveTask(ctx, owner, id)
}

func (h *Handler) handleViewTask(ctx context.Context, contextID, owner string) {
	list, err := h.tasks.ListActive(ctx, owner)
	if err != nil {
		logging.FromContext(ctx, h.log).Error("Failed to list tasks", slog.Any("error", err))
		h.reply(ctx, contextID, conversation.MsgStoreFailure, FormatPlain)
		return
	}
	h.reply(ctx, contextID, FormatTaskList(list, h.today()), FormatMarkdown)
}
