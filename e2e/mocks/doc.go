// Package mocks provides mock implementations for E2E testing of Task Pilot.
//
// This package provides:
//   - TelegramMock: A fake Telegram Bot API server that queues inbound
//     updates and records every sendMessage call
//
// Example usage:
//
//	tg := mocks.NewTelegramMock()
//	defer tg.Close()
//
//	client := telegram.NewClientWithBaseURL(testutil.FakeTelegramBotToken, tg.URL())
//	tg.SendUserText(42, "Alice", "/addtask")
//	msgs := tg.WaitForMessages(42, 1, time.Second)
package mocks
