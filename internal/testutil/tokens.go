// Package testutil provides testing utilities for the taskpilot project.
package testutil

// Safe test tokens that won't trigger secret scanning.
const (
	// FakeTelegramBotToken is shaped like a bot token but obviously fake.
	FakeTelegramBotToken = "123456:test-telegram-bot-token"
)
