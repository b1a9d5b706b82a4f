// Package config loads and validates the taskpilot configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/alekspetrov/taskpilot/internal/adapters/telegram"
	"github.com/alekspetrov/taskpilot/internal/comms"
	"github.com/alekspetrov/taskpilot/internal/logging"
	"github.com/alekspetrov/taskpilot/internal/reminder"
	"github.com/alekspetrov/taskpilot/internal/tasks"
)

// BotTokenEnv fills an empty telegram.bot_token.
const BotTokenEnv = "TELEGRAM_BOT_TOKEN"

// Config represents the main configuration
type Config struct {
	Version      string                 `yaml:"version"`
	Telegram     *telegram.Config       `yaml:"telegram"`
	Store        *tasks.Config          `yaml:"store"`
	Reminder     *reminder.Config       `yaml:"reminder"`
	Conversation *ConversationConfig    `yaml:"conversation"`
	RateLimit    *comms.RateLimitConfig `yaml:"rate_limit"`
	Logging      *logging.Config        `yaml:"logging"`
}

// ConversationConfig holds multi-step flow settings
type ConversationConfig struct {
	// TTL drops flows left unanswered this long. Zero keeps them forever.
	TTL time.Duration `yaml:"ttl"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version:  "1.0",
		Telegram: telegram.DefaultConfig(),
		Store:    tasks.DefaultConfig(),
		Reminder: reminder.DefaultConfig(),
		Conversation: &ConversationConfig{
			TTL: 30 * time.Minute,
		},
		RateLimit: comms.DefaultRateLimitConfig(),
		Logging:   logging.DefaultConfig(),
	}
}

// Load loads configuration from a file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err == nil {
		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.applyDefaults()
	return config, nil
}

// applyDefaults fills sections a partial file left nil and resolves paths.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Telegram == nil {
		c.Telegram = def.Telegram
	}
	if c.Store == nil {
		c.Store = def.Store
	}
	if c.Reminder == nil {
		c.Reminder = def.Reminder
	}
	if c.Conversation == nil {
		c.Conversation = def.Conversation
	}
	if c.RateLimit == nil {
		c.RateLimit = def.RateLimit
	}
	if c.Logging == nil {
		c.Logging = def.Logging
	}

	if c.Telegram.BotToken == "" {
		c.Telegram.BotToken = os.Getenv(BotTokenEnv)
	}
	if c.Store.Driver == "" {
		c.Store.Driver = tasks.DriverSQLite
	}
	c.Store.Path = expandPath(c.Store.Path)
	if c.Logging.Output != "stdout" && c.Logging.Output != "stderr" {
		c.Logging.Output = expandPath(c.Logging.Output)
	}
}

// Save saves configuration to a file
func Save(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold the bot token.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default configuration path
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".taskpilot", "config.yaml")
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if c.Store == nil || c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store path is required"))
	} else if c.Store.Driver != tasks.DriverSQLite && c.Store.Driver != tasks.DriverSQLite3 {
		errs = append(errs, fmt.Errorf("invalid store driver %q: must be %q or %q",
			c.Store.Driver, tasks.DriverSQLite, tasks.DriverSQLite3))
	}

	if r := c.Reminder; r != nil {
		if _, err := cron.ParseStandard(r.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("invalid reminder schedule %q: %w", r.Schedule, err))
		}
		if _, err := time.LoadLocation(r.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("invalid reminder timezone %q: %w", r.Timezone, err))
		}
		if r.SendTimeout <= 0 {
			errs = append(errs, fmt.Errorf("reminder send_timeout must be positive, got %s", r.SendTimeout))
		}
	}

	if c.Conversation != nil && c.Conversation.TTL < 0 {
		errs = append(errs, fmt.Errorf("conversation ttl must not be negative, got %s", c.Conversation.TTL))
	}

	if rl := c.RateLimit; rl != nil && rl.Enabled && rl.MessagesPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit messages_per_minute must be positive when enabled"))
	}

	if c.Telegram != nil && c.Telegram.PollTimeout < 0 {
		errs = append(errs, fmt.Errorf("telegram poll_timeout must not be negative"))
	}

	return errors.Join(errs...)
}

// ValidateForBot additionally requires what `taskpilot start` needs.
func (c *Config) ValidateForBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram == nil || !c.Telegram.Enabled {
		return fmt.Errorf("telegram is disabled in config")
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required: set telegram.bot_token or %s", BotTokenEnv)
	}
	return nil
}
