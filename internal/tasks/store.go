package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverSQLite is the pure Go driver (modernc.org/sqlite).
	DriverSQLite = "sqlite"
	// DriverSQLite3 is the cgo driver (mattn/go-sqlite3).
	DriverSQLite3 = "sqlite3"
)

// Config selects the database driver and file.
type Config struct {
	Driver string `yaml:"driver"` // sqlite (default) or sqlite3
	Path   string `yaml:"path"`   // database file, ":memory:" allowed
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Driver: DriverSQLite,
		Path:   filepath.Join(homeDir, ".taskpilot", "tasks.db"),
	}
}

// Store persists tasks in a single SQLite table.
//
// The pool is capped at one connection, so every statement is serialised
// and the message loop and the reminder scheduler can share one Store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database described by cfg and runs
// migrations.
func Open(cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverSQLite3 {
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open(driver, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set database pragmas: %w", err)
	}

	s, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an already opened database and runs migrations.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("task store migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			deadline TEXT,
			completed BOOLEAN NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT ''
		)`,
		`ALTER TABLE tasks ADD COLUMN last_reminded_on TEXT`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_owner_active ON tasks(owner_id, completed)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_deadline ON tasks(deadline)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			if strings.Contains(err.Error(), "duplicate column") {
				continue
			}
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const taskColumns = `id, owner_id, title, deadline, completed, created_at, last_reminded_on`

// Create inserts a task and returns its id. Title validation happens upstream;
// only I/O failures are reported.
func (s *Store) Create(ctx context.Context, ownerID, title string, deadline *time.Time) (int64, error) {
	var dl sql.NullString
	if deadline != nil {
		dl = sql.NullString{String: formatDay(*deadline), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (owner_id, title, deadline, created_at) VALUES (?, ?, ?, ?)`,
		ownerID, title, dl, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, storeErr("create", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("create", err)
	}
	return id, nil
}

// Get returns one task by id, only if ownerID owns it.
func (s *Store) Get(ctx context.Context, id int64, ownerID string) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get", err)
	}
	return t, nil
}

// ListActive returns the owner's incomplete tasks by deadline ascending.
// Tasks without a deadline come last; ties keep creation order.
func (s *Store) ListActive(ctx context.Context, ownerID string) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		WHERE owner_id = ? AND completed = 0
		ORDER BY deadline IS NULL, deadline ASC, id ASC`, ownerID)
	if err != nil {
		return nil, storeErr("list", err)
	}
	defer func() { _ = rows.Close() }()

	out, err := scanTasks(rows)
	if err != nil {
		return nil, storeErr("list", err)
	}
	return out, nil
}

// Complete marks the task done. It reports false when nothing matched:
// unknown id, foreign owner, or already completed.
func (s *Store) Complete(ctx context.Context, id int64, ownerID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET completed = 1 WHERE id = ? AND owner_id = ? AND completed = 0`, id, ownerID)
	if err != nil {
		return false, storeErr("complete", err)
	}
	return matched(res, "complete")
}

// Delete removes the task. It reports false for unknown or foreign ids.
func (s *Store) Delete(ctx context.Context, id int64, ownerID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, storeErr("delete", err)
	}
	return matched(res, "delete")
}

// DueWithin returns incomplete tasks, across all owners, whose deadline is
// today or today+daysAhead.
func (s *Store) DueWithin(ctx context.Context, today time.Time, daysAhead int) ([]*Task, error) {
	if daysAhead < 0 {
		return nil, fmt.Errorf("daysAhead must not be negative, got %d", daysAhead)
	}
	first := Day(today)
	last := first.AddDate(0, 0, daysAhead)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		WHERE completed = 0 AND deadline IN (?, ?)
		ORDER BY deadline ASC, id ASC`, formatDay(first), formatDay(last))
	if err != nil {
		return nil, storeErr("due", err)
	}
	defer func() { _ = rows.Close() }()

	out, err := scanTasks(rows)
	if err != nil {
		return nil, storeErr("due", err)
	}
	return out, nil
}

// MarkReminded records that a reminder for the task was delivered on day.
func (s *Store) MarkReminded(ctx context.Context, id int64, day time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET last_reminded_on = ? WHERE id = ?`, formatDay(day), id); err != nil {
		return storeErr("mark reminded", err)
	}
	return nil
}

func matched(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr(op, err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (*Task, error) {
	var (
		t         Task
		deadline  sql.NullString
		reminded  sql.NullString
		createdAt string
	)
	if err := r.Scan(&t.ID, &t.OwnerID, &t.Title, &deadline, &t.Completed, &createdAt, &reminded); err != nil {
		return nil, err
	}

	if deadline.Valid && deadline.String != "" {
		d, err := parseDay(deadline.String)
		if err != nil {
			return nil, fmt.Errorf("task %d has malformed deadline %q: %w", t.ID, deadline.String, err)
		}
		t.Deadline = &d
	}
	if reminded.Valid && reminded.String != "" {
		if d, err := parseDay(reminded.String); err == nil {
			t.LastRemindedOn = &d
		}
	}
	if createdAt != "" {
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			t.CreatedAt = ts
		}
	}
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]*Task, error) {
	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
