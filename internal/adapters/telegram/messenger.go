package telegram

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alekspetrov/taskpilot/internal/comms"
)

// maxMessageLen stays under Telegram's 4096 character limit.
const maxMessageLen = 4000

// TelegramMessenger implements comms.Messenger interface for Telegram
type TelegramMessenger struct {
	client        *Client
	plainTextMode bool
}

// NewTelegramMessenger creates a new Telegram messenger
func NewTelegramMessenger(client *Client, plainTextMode bool) *TelegramMessenger {
	return &TelegramMessenger{
		client:        client,
		plainTextMode: plainTextMode,
	}
}

// getParseMode returns the parse mode for format, honoring plainTextMode.
func (tm *TelegramMessenger) getParseMode(format comms.Format) string {
	if tm.plainTextMode {
		return ""
	}
	return string(format)
}

// SendText sends text to a chat, split into several messages when long.
func (tm *TelegramMessenger) SendText(ctx context.Context, contextID, text string, format comms.Format) error {
	if tm.plainTextMode && format == comms.FormatMarkdown {
		text = comms.StripMarkdown(text)
	}

	for _, chunk := range chunkContent(text, maxMessageLen) {
		if _, err := tm.client.SendMessage(ctx, contextID, chunk, tm.getParseMode(format)); err != nil {
			return fmt.Errorf("failed to send text message: %w", err)
		}
	}
	return nil
}

// chunkContent splits content into chunks of at most maxLen bytes,
// preferring paragraph and line breaks.
func chunkContent(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}

	var chunks []string
	remaining := content

	for len(remaining) > 0 {
		if len(remaining) <= maxLen {
			chunks = append(chunks, remaining)
			break
		}

		breakPoint := maxLen
		for breakPoint > 0 && !utf8.RuneStart(remaining[breakPoint]) {
			breakPoint--
		}
		if breakPoint == 0 {
			breakPoint = maxLen
		}

		if idx := strings.LastIndex(remaining[:maxLen], "\n\n"); idx > maxLen/2 {
			breakPoint = idx + 2
		} else if idx := strings.LastIndex(remaining[:maxLen], "\n"); idx > maxLen/2 {
			breakPoint = idx + 1
		}

		chunks = append(chunks, strings.TrimSpace(remaining[:breakPoint]))
		remaining = strings.TrimSpace(remaining[breakPoint:])
	}

	return chunks
}
