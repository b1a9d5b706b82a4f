package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alekspetrov/taskpilot/internal/comms"
	"github.com/alekspetrov/taskpilot/internal/logging"
	"github.com/alekspetrov/taskpilot/internal/tasks"
)

// Scheduler checks for upcoming deadlines on every tick and notifies owners.
// Missed ticks are not caught up.
type Scheduler struct {
	store     Store
	messenger comms.Messenger
	config    *Config
	loc       *time.Location
	cron      *cron.Cron
	mu        sync.Mutex
	running   bool
	entryID   cron.EntryID
	now       func() time.Time
	logger    *slog.Logger
}

// NewScheduler creates a reminder scheduler. An invalid timezone falls back
// to UTC.
func NewScheduler(store Store, messenger comms.Messenger, config *Config, logger *slog.Logger) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logging.WithComponent("reminder")
	}

	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		logger.Warn("Invalid timezone, using UTC",
			slog.String("timezone", config.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	return &Scheduler{
		store:     store,
		messenger: messenger,
		config:    config,
		loc:       loc,
		cron:      cron.New(cron.WithLocation(loc)),
		now:       time.Now,
		logger:    logger,
	}
}

// Start registers the tick with cron and starts it. ctx is handed to every
// tick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if !s.config.Enabled {
		s.logger.Info("Reminder scheduler disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runTick(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders %q: %w", s.config.Schedule, err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.running = true

	s.logger.Info("Reminder scheduler started",
		slog.String("schedule", s.config.Schedule),
		slog.String("timezone", s.loc.String()),
		slog.Time("next_run", s.cron.Entry(s.entryID).Next),
	)
	return nil
}

// Stop stops the scheduler and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	done := s.cron.Stop()
	<-done.Done()
	s.cron.Remove(s.entryID)
	s.running = false
	s.logger.Info("Reminder scheduler stopped")
}

// Status returns scheduler status information. NextRun and LastRun are
// zero unless the scheduler is running.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Enabled:  s.config.Enabled,
		Running:  s.running,
		Schedule: s.config.Schedule,
		Timezone: s.loc.String(),
	}
	if s.running {
		entry := s.cron.Entry(s.entryID)
		status.NextRun = entry.Next
		status.LastRun = entry.Prev
	}
	return status
}

// RunNow runs one tick immediately and returns the per-task results.
func (s *Scheduler) RunNow(ctx context.Context) ([]Result, error) {
	return s.Tick(ctx)
}

// runTick is the cron entry point; it never lets a panic escape.
func (s *Scheduler) runTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic in reminder tick",
				slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
		}
	}()

	results, err := s.Tick(ctx)
	if err != nil {
		s.logger.Error("Reminder tick failed", slog.Any("error", err))
		return
	}

	var sent, failed, skipped int
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
		case r.Success:
			sent++
		default:
			failed++
		}
	}
	s.logger.Info("Reminder tick finished",
		slog.Int("sent", sent), slog.Int("failed", failed), slog.Int("skipped", skipped))
}

// Tick queries tasks due tomorrow (and today, when configured) and notifies
// each owner once. A failed send is logged and leaves the task unmarked so a
// later tick retries it.
func (s *Scheduler) Tick(ctx context.Context) ([]Result, error) {
	today := tasks.Day(s.now().In(s.loc))

	due, err := s.store.DueWithin(ctx, today, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tasks: %w", err)
	}

	results := make([]Result, 0, len(due))
	for _, t := range due {
		days, _ := t.DaysLeft(today)
		if days == 0 && !s.config.IncludeToday {
			continue
		}
		results = append(results, s.remind(ctx, t, today, days))
	}
	return results, nil
}

func (s *Scheduler) remind(ctx context.Context, t *tasks.Task, today time.Time, days int) Result {
	res := Result{TaskID: t.ID, OwnerID: t.OwnerID}
	ctx = logging.ContextWithTask(logging.ContextWithOwner(ctx, t.OwnerID), t.ID)
	lg := logging.FromContext(ctx, s.logger)

	if s.config.Dedupe && t.RemindedOn(today) {
		res.Skipped = true
		return res
	}

	sendCtx := ctx
	if s.config.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.config.SendTimeout)
		defer cancel()
	}

	if err := s.messenger.SendText(sendCtx, t.OwnerID, reminderText(t, days), comms.FormatPlain); err != nil {
		lg.Warn("Failed to deliver reminder", slog.Any("error", err))
		res.Error = err
		return res
	}
	res.Success = true

	if s.config.Dedupe {
		if err := s.store.MarkReminded(ctx, t.ID, today); err != nil {
			lg.Error("Failed to record reminder", slog.Any("error", err))
		}
	}
	lg.Debug("Reminder delivered")
	return res
}

func reminderText(t *tasks.Task, days int) string {
	if days == 0 {
		return fmt.Sprintf("⏰ Reminder: task '%s' (ID: %d) is due today: %s.", t.Title, t.ID, t.DeadlineText())
	}
	return fmt.Sprintf("🔔 Reminder: task '%s' (ID: %d) is due tomorrow: %s.", t.Title, t.ID, t.DeadlineText())
}
