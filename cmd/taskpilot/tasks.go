package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alekspetrov/taskpilot/internal/comms"
	"github.com/alekspetrov/taskpilot/internal/tasks"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7eb8da")) // steel blue

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8b949e"))

	urgencyStyles = map[comms.Urgency]lipgloss.Style{
		comms.UrgencyOverdue:  lipgloss.NewStyle().Foreground(lipgloss.Color("#d48a8a")), // dusty rose
		comms.UrgencyDueToday: lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a054")), // amber
		comms.UrgencyDueSoon:  lipgloss.NewStyle().Foreground(lipgloss.Color("#e5c07b")),
		comms.UrgencyOnTrack:  lipgloss.NewStyle().Foreground(lipgloss.Color("#7ec699")), // sage green
		comms.UrgencyNone:     dimStyle,
	}
)

func newTasksCmd(configPath *string) *cobra.Command {
	var ownerID string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Print an owner's active tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			store, err := tasks.Open(cfg.Store)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			list, err := store.ListActive(context.Background(), ownerID)
			if err != nil {
				return err
			}

			today := tasks.Day(time.Now().In(location(cfg)))
			printTasks(cmd.OutOrStdout(), ownerID, list, today)
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "local", "owner ID to list tasks for")
	return cmd
}

func printTasks(w io.Writer, ownerID string, list []*tasks.Task, today time.Time) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Active tasks for %s", ownerID)))
	if len(list) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  (none)"))
		return
	}

	for _, t := range list {
		u := comms.UrgencyOf(t, today)
		deadline := t.DeadlineText()
		if deadline == "" {
			deadline = "-"
		}
		fmt.Fprintf(w, "  %4d  %-10s  %s  %s\n",
			t.ID, deadline, urgencyStyles[u].Render(fmt.Sprintf("%-11s", u)), t.Title)
	}
}
