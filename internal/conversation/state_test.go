package conversation

import (
	"testing"
	"time"
)

func TestStateStoreDefaultsToIdle(t *testing.T) {
	s := NewStateStore(time.Minute)
	if got := s.Get("nobody"); got.Mode != ModeIdle {
		t.Errorf("Get() mode = %q, want idle", got.Mode)
	}
}

func TestStateStoreSetOverwrites(t *testing.T) {
	s := NewStateStore(time.Minute)

	s.Set("1", State{Mode: ModeAwaitingDeadline, PendingTitle: "old"})
	s.Set("1", State{Mode: ModeAwaitingDeleteID})

	got := s.Get("1")
	if got.Mode != ModeAwaitingDeleteID {
		t.Errorf("mode = %q, want %q", got.Mode, ModeAwaitingDeleteID)
	}
	if got.PendingTitle != "" {
		t.Errorf("pending title leaked into new flow: %q", got.PendingTitle)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStateStoreSetIdleClears(t *testing.T) {
	s := NewStateStore(time.Minute)
	s.Set("1", State{Mode: ModeAwaitingTitle})
	s.Set("1", State{Mode: ModeIdle})

	if s.Len() != 0 {
		t.Errorf("Len() = %d after setting idle", s.Len())
	}
}

func TestStateStoreClear(t *testing.T) {
	s := NewStateStore(time.Minute)
	s.Set("1", State{Mode: ModeAwaitingTitle})

	if !s.Clear("1") {
		t.Error("Clear() = false for an open flow")
	}
	if s.Clear("1") {
		t.Error("Clear() = true for an already idle owner")
	}
}

func TestStateStoreExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStateStore(30 * time.Minute)
	s.now = func() time.Time { return now }

	s.Set("stale", State{Mode: ModeAwaitingTitle})
	now = now.Add(20 * time.Minute)
	s.Set("fresh", State{Mode: ModeAwaitingCompleteID})
	now = now.Add(15 * time.Minute)

	expired := s.Expire()
	if len(expired) != 1 || expired[0] != "stale" {
		t.Fatalf("Expire() = %v, want [stale]", expired)
	}
	if s.Get("fresh").Mode != ModeAwaitingCompleteID {
		t.Error("fresh flow was expired")
	}
}

func TestStateStoreExpireDisabled(t *testing.T) {
	s := NewStateStore(0)
	s.now = func() time.Time { return time.Unix(0, 0) }
	s.Set("1", State{Mode: ModeAwaitingTitle})

	if expired := s.Expire(); expired != nil {
		t.Errorf("Expire() with zero ttl = %v", expired)
	}
}
