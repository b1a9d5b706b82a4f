package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alekspetrov/taskpilot/internal/console"
	"github.com/alekspetrov/taskpilot/internal/logging"
	"github.com/alekspetrov/taskpilot/internal/tasks"
)

func newChatCmd(configPath *string) *cobra.Command {
	var ownerID, username string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the bot in the terminal instead of Telegram",
		Long:  `Opens a local chat with the same commands as the Telegram bot, against the configured task store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			// Log lines would corrupt the TUI.
			if cfg.Logging.Output == "stdout" || cfg.Logging.Output == "stderr" || cfg.Logging.Output == "" {
				logging.Suppress()
			}

			store, err := tasks.Open(cfg.Store)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			messenger := console.NewMessenger()
			handler := newDispatcher(cfg, store, messenger)
			return console.Run(ctx, handler, messenger, ownerID, username, version)
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "local", "owner ID the tasks belong to (use your Telegram user ID to share tasks with the bot)")
	cmd.Flags().StringVar(&username, "name", "", "name used in the greeting")
	return cmd
}
