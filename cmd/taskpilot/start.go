package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"

	"github.com/alekspetrov/taskpilot/internal/adapters/telegram"
	"github.com/alekspetrov/taskpilot/internal/banner"
	"github.com/alekspetrov/taskpilot/internal/logging"
	"github.com/alekspetrov/taskpilot/internal/reminder"
	"github.com/alekspetrov/taskpilot/internal/tasks"
)

const shutdownTimeout = 15 * time.Second

func newStartCmd(configPath *string) *cobra.Command {
	var noBanner bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the Telegram bot and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.ValidateForBot(); err != nil {
				return err
			}

			log := logging.WithComponent("taskpilot")
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			client := telegram.NewClient(cfg.Telegram.BotToken)
			if err := client.CheckSingleton(ctx); err != nil {
				if errors.Is(err, telegram.ErrConflict) {
					return fmt.Errorf("another taskpilot instance is already running with this bot token")
				}
				return fmt.Errorf("failed to reach Telegram: %w", err)
			}

			store, err := tasks.Open(cfg.Store)
			if err != nil {
				return err
			}

			messenger := telegram.NewTelegramMessenger(client, cfg.Telegram.PlainText)
			handler := newDispatcher(cfg, store, messenger)
			transport := telegram.NewTransport(client, handler, cfg.Telegram)
			scheduler := reminder.NewScheduler(store, messenger, cfg.Reminder, logging.WithComponent("reminder"))

			if err := scheduler.Start(ctx); err != nil {
				_ = store.Close()
				return err
			}
			transport.StartPolling(ctx)

			status := scheduler.Status()
			if !noBanner {
				banner.StartupTelegram(cmd.OutOrStdout(), version, cfg, status)
			}
			log.Info("Task Pilot started",
				slog.String("store", cfg.Store.Path),
				slog.Bool("reminders_running", status.Running),
				slog.Time("next_reminder", status.NextRun))

			wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout,
				map[string]gfshutdown.Operation{
					"telegram": func(ctx context.Context) error {
						transport.Stop()
						return nil
					},
					"reminder": func(ctx context.Context) error {
						scheduler.Stop()
						return nil
					},
				})

			exitCode := <-wait
			cancel()
			if err := store.Close(); err != nil {
				log.Warn("Failed to close store", slog.Any("error", err))
			}
			log.Info("Task Pilot stopped", slog.Int("exit_code", exitCode))
			os.Exit(exitCode)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noBanner, "no-banner", false, "skip the startup banner")
	return cmd
}
