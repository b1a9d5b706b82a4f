// Package e2e provides end-to-end tests for the Task Pilot bot.
//
// These tests drive the complete path a Telegram user sees:
//  1. Updates are long-polled from a fake Bot API
//  2. The dispatcher runs commands and multi-step flows
//  3. Tasks land in a real SQLite store
//  4. The reminder scheduler notifies owners through the same API
//
// Run with: go test -v ./e2e/...
//
// Skip in short mode: go test -short ./...
//
// The Bot API is served by httptest.NewServer, so no network access or
// real bot token is needed.
//
// # Test Structure
//
//   - workflow_test.go: Main E2E workflow tests
//   - mocks/telegram.go: Fake Telegram Bot API server
package e2e
