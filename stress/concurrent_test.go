package stress

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alekspetrov/taskpilot/internal/conversation"
	"github.com/alekspetrov/taskpilot/internal/reminder"
	"github.com/alekspetrov/taskpilot/internal/tasks"
)

// TestStress_ConcurrentOwners drives many owners through the add flow at
// once while reminder ticks run, and checks nothing is lost or leaked.
func TestStress_ConcurrentOwners(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	const (
		numOwners     = 25
		tasksPerOwner = 8
		reminderTicks = 10
		testTimeout   = 2 * time.Minute
	)

	h := newHarness(t, time.Hour)
	tomorrow := tasks.Day(time.Now().UTC()).AddDate(0, 0, 1).Format(tasks.DateLayout)

	sched := reminder.NewScheduler(h.store, h.messenger, &reminder.Config{
		Enabled:      true,
		Schedule:     "@every 1h",
		Timezone:     "UTC",
		IncludeToday: true,
		SendTimeout:  time.Second,
		Dedupe:       true,
	}, nil)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				h.metrics.SampleMemoryAndGoroutines()
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for o := 0; o < numOwners; o++ {
		owner := fmt.Sprintf("owner-%d", o)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < tasksPerOwner; i++ {
				if ctx.Err() != nil {
					return
				}
				h.send(owner, "/addtask")
				h.send(owner, fmt.Sprintf("%s task %d", owner, i))
				h.send(owner, tomorrow)
				h.metrics.RecordFlowCompleted()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < reminderTicks; i++ {
			results, err := sched.RunNow(ctx)
			if err != nil {
				t.Errorf("RunNow failed: %v", err)
				return
			}
			sent := 0
			for _, r := range results {
				if r.Success {
					sent++
				}
			}
			h.metrics.RecordRemindersSent(sent)
			time.Sleep(10 * time.Millisecond)
		}
	}()

	wg.Wait()

	// A final tick catches every task created after the last concurrent one.
	results, err := sched.RunNow(ctx)
	if err != nil {
		t.Fatalf("final RunNow failed: %v", err)
	}
	for _, r := range results {
		if r.Success {
			h.metrics.RecordRemindersSent(1)
		}
	}

	close(done)
	h.metrics.Finalize()

	for o := 0; o < numOwners; o++ {
		owner := fmt.Sprintf("owner-%d", o)

		list, err := h.store.ListActive(ctx, owner)
		if err != nil {
			t.Fatalf("ListActive(%s) failed: %v", owner, err)
		}
		if len(list) != tasksPerOwner {
			t.Errorf("%s has %d tasks, want %d", owner, len(list), tasksPerOwner)
		}
		for _, task := range list {
			if !strings.HasPrefix(task.Title, owner+" ") {
				t.Errorf("%s owns foreign task %q", owner, task.Title)
			}
		}

		// Every reply and reminder went to the owner's own chat.
		for _, m := range h.messenger.SentTo(owner) {
			if strings.Contains(m.Text, "owner-") && !strings.Contains(m.Text, owner+" ") {
				t.Errorf("%s received %q", owner, m.Text)
			}
		}
		if h.states.Get(owner).Mode != conversation.ModeIdle {
			t.Errorf("%s left with open flow %q", owner, h.states.Get(owner).Mode)
		}
	}

	// Dedupe holds under concurrency: one reminder per task.
	wantReminders := int64(numOwners * tasksPerOwner)
	if h.metrics.RemindersSent != wantReminders {
		t.Errorf("sent %d reminders, want %d", h.metrics.RemindersSent, wantReminders)
	}

	t.Logf("Stress test results:")
	t.Logf("  Messages handled: %d", h.metrics.MessagesHandled)
	t.Logf("  Flows completed: %d", h.metrics.FlowsCompleted)
	t.Logf("  Reminders sent: %d", h.metrics.RemindersSent)
	t.Logf("  Peak concurrent: %d", h.metrics.PeakConcurrent)
	t.Logf("  Duration: %v", h.metrics.Duration())
	t.Logf("  Rate: %.1f messages/second", h.metrics.MessagesPerSecond())
	t.Logf("  Avg handling time: %v", h.metrics.AverageProcessingTime())
	t.Logf("  Peak goroutines: %d", h.metrics.GetPeakGoroutines())
}

// TestStress_InterleavedCommands hammers a single owner's flows from
// several goroutines. Order is not guaranteed, but the store must stay
// consistent and no call may panic or deadlock.
func TestStress_InterleavedCommands(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	const (
		workers    = 8
		iterations = 50
	)

	h := newHarness(t, time.Hour)
	commands := []string{"/addtask quick task", "/viewtask", "/complete", "1", "/removetask 2", "/cancel", "/help"}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				h.send("shared", commands[(w+i)%len(commands)])
			}
		}(w)
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Minute):
		t.Fatal("interleaved commands deadlocked")
	}

	if got := h.metrics.MessagesHandled; got != workers*iterations {
		t.Errorf("handled %d messages, want %d", got, workers*iterations)
	}

	list, err := h.store.ListActive(context.Background(), "shared")
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	for _, task := range list {
		if task.OwnerID != "shared" || task.Completed {
			t.Errorf("inconsistent task in active list: %+v", task)
		}
	}
}
