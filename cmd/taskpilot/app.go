package main

import (
	"fmt"
	"time"

	"github.com/alekspetrov/taskpilot/internal/comms"
	"github.com/alekspetrov/taskpilot/internal/config"
	"github.com/alekspetrov/taskpilot/internal/conversation"
	"github.com/alekspetrov/taskpilot/internal/logging"
	"github.com/alekspetrov/taskpilot/internal/tasks"
)

// loadConfig reads and validates the config file and initialises logging.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := logging.Init(cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, nil
}

// location returns the timezone reminders and urgency are computed in.
func location(cfg *config.Config) *time.Location {
	loc, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// newDispatcher wires the conversation machine and command handler over store.
func newDispatcher(cfg *config.Config, store *tasks.Store, messenger comms.Messenger) *comms.Handler {
	machine := conversation.NewMachine(store, conversation.NewStateStore(cfg.Conversation.TTL))
	return comms.NewHandler(&comms.HandlerConfig{
		Messenger: messenger,
		Tasks:     store,
		Machine:   machine,
		RateLimit: cfg.RateLimit,
		Location:  location(cfg),
		Log:       logging.WithComponent("comms"),
	})
}
