package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/alekspetrov/taskpilot/internal/adapters/telegram"
	"github.com/alekspetrov/taskpilot/internal/comms"
	"github.com/alekspetrov/taskpilot/internal/logging"
	"github.com/alekspetrov/taskpilot/internal/reminder"
	"github.com/alekspetrov/taskpilot/internal/tasks"
)

// printMessenger writes outbound messages instead of delivering them.
type printMessenger struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printMessenger) SendText(_ context.Context, contextID, text string, _ comms.Format) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.w, "→ %s: %s\n", contextID, text)
	return err
}

func newRemindCmd(configPath *string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run one reminder check now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			var messenger comms.Messenger
			if dryRun {
				messenger = &printMessenger{w: cmd.OutOrStdout()}
				// Leave tasks unmarked so the real scheduler still sends them.
				cfg.Reminder.Dedupe = false
			} else {
				if err := cfg.ValidateForBot(); err != nil {
					return err
				}
				messenger = telegram.NewTelegramMessenger(telegram.NewClient(cfg.Telegram.BotToken), cfg.Telegram.PlainText)
			}

			store, err := tasks.Open(cfg.Store)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			scheduler := reminder.NewScheduler(store, messenger, cfg.Reminder, logging.WithComponent("reminder"))
			results, err := scheduler.RunNow(context.Background())
			if err != nil {
				return err
			}

			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print reminders instead of sending them")
	return cmd
}

func printResults(w io.Writer, results []reminder.Result) {
	var sent, failed, skipped int
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
		case r.Success:
			sent++
		default:
			failed++
			fmt.Fprintf(w, "✗ task %d for %s: %v\n", r.TaskID, r.OwnerID, r.Error)
		}
	}
	fmt.Fprintf(w, "Reminders: %d sent, %d failed, %d already sent today\n", sent, failed, skipped)
}
