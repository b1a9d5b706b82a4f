package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alekspetrov/taskpilot/internal/config"
	"github.com/alekspetrov/taskpilot/internal/tasks"
)

// writeTestConfig saves a config whose store lives in a temp dir.
func writeTestConfig(t *testing.T) (string, *config.Config) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Store.Path = filepath.Join(dir, "tasks.db")
	cfg.Logging.Level = "error"
	cfg.Logging.Output = "stderr"

	path := filepath.Join(dir, "config.yaml")
	if err := config.Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return path, cfg
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "v"+version) {
		t.Errorf("output = %q", out)
	}
}

func TestRootHasCommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"start": false, "chat": false, "tasks": false, "remind": false, "init": false, "version": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")

	out, err := runCmd(t, "init", "--config", path)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output does not mention path: %q", out)
	}

	t.Setenv(config.BotTokenEnv, "from-env")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Telegram.BotToken != "from-env" {
		t.Errorf("BotToken = %q, want token from env placeholder", cfg.Telegram.BotToken)
	}

	if _, err := runCmd(t, "init", "--config", path); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, err := runCmd(t, "init", "--config", path, "--force"); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
}

func TestTasksCmd(t *testing.T) {
	path, cfg := writeTestConfig(t)

	store, err := tasks.Open(cfg.Store)
	if err != nil {
		t.Fatalf("tasks.Open failed: %v", err)
	}
	deadline := tasks.Day(time.Now()).AddDate(0, 0, 10)
	_, _ = store.Create(context.Background(), "77", "Renew passport", &deadline)
	_, _ = store.Create(context.Background(), "other", "Not mine", nil)
	_ = store.Close()

	out, err := runCmd(t, "tasks", "--config", path, "--owner", "77")
	if err != nil {
		t.Fatalf("tasks failed: %v", err)
	}
	if !strings.Contains(out, "Renew passport") || !strings.Contains(out, deadline.Format(tasks.DateLayout)) {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "Not mine") {
		t.Error("listed another owner's task")
	}
}

func TestRemindDryRun(t *testing.T) {
	path, cfg := writeTestConfig(t)

	store, err := tasks.Open(cfg.Store)
	if err != nil {
		t.Fatalf("tasks.Open failed: %v", err)
	}
	tomorrow := tasks.Day(time.Now().UTC()).AddDate(0, 0, 1)
	id, _ := store.Create(context.Background(), "77", "Dentist", &tomorrow)
	_ = store.Close()

	out, err := runCmd(t, "remind", "--config", path, "--dry-run")
	if err != nil {
		t.Fatalf("remind failed: %v", err)
	}
	if !strings.Contains(out, "→ 77:") || !strings.Contains(out, "Dentist") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "1 sent") {
		t.Errorf("summary missing: %q", out)
	}

	// Dry runs leave the task unmarked.
	store, _ = tasks.Open(cfg.Store)
	defer func() { _ = store.Close() }()
	task, err := store.Get(context.Background(), id, "77")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if task.LastRemindedOn != nil {
		t.Error("dry run marked the task as reminded")
	}
}

func TestRemindRequiresToken(t *testing.T) {
	t.Setenv(config.BotTokenEnv, "")
	path, _ := writeTestConfig(t)

	if _, err := runCmd(t, "remind", "--config", path); err == nil || !strings.Contains(err.Error(), config.BotTokenEnv) {
		t.Errorf("remind without token err = %v", err)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Store.Path = filepath.Join(dir, "tasks.db")
	cfg.Reminder.Timezone = "Not/AZone"
	path := filepath.Join(dir, "config.yaml")
	if err := config.Save(cfg, path); err != nil {
		t.Fatal(err)
	}

	if _, err := runCmd(t, "tasks", "--config", path); err == nil {
		t.Error("expected invalid config error")
	}
}
