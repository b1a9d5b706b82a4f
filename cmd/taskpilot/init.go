package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alekspetrov/taskpilot/internal/banner"
	"github.com/alekspetrov/taskpilot/internal/config"
)

func newInitCmd(configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *configPath
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			// Keep the token out of the file unless it is written explicitly.
			cfg.Telegram.BotToken = "${" + config.BotTokenEnv + "}"
			if err := config.Save(cfg, path); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			banner.PrintWithVersion(out, version)
			fmt.Fprintf(out, "✓ Config written to %s\n", path)
			fmt.Fprintf(out, "  Export %s, then run: taskpilot start\n", config.BotTokenEnv)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}
