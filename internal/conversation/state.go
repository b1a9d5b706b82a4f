// Package conversation tracks each user's in-progress multi-step command and
// advances it one inbound message at a time.
package conversation

import (
	"sync"
	"time"
)

// Mode is the step a user's flow is waiting on.
type Mode string

const (
	ModeIdle               Mode = "idle"
	ModeAwaitingTitle      Mode = "awaiting_title"
	ModeAwaitingDeadline   Mode = "awaiting_deadline"
	ModeAwaitingDeleteID   Mode = "awaiting_delete_id"
	ModeAwaitingCompleteID Mode = "awaiting_complete_id"
)

// State is one user's open flow.
type State struct {
	Mode         Mode
	PendingTitle string // set while awaiting the deadline
	UpdatedAt    time.Time
}

// StateStore holds at most one State per owner, in memory only.
type StateStore struct {
	mu     sync.RWMutex
	states map[string]State
	ttl    time.Duration
	now    func() time.Time
}

// NewStateStore creates a store whose entries expire after ttl of inactivity.
// A zero ttl disables expiry.
func NewStateStore(ttl time.Duration) *StateStore {
	return &StateStore{
		states: make(map[string]State),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Get returns the owner's state, ModeIdle when none is stored.
func (s *StateStore) Get(ownerID string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.states[ownerID]; ok {
		return st
	}
	return State{Mode: ModeIdle}
}

// Set replaces whatever flow the owner had open. Setting ModeIdle clears it.
func (s *StateStore) Set(ownerID string, st State) {
	if st.Mode == ModeIdle || st.Mode == "" {
		s.Clear(ownerID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st.UpdatedAt = s.now()
	s.states[ownerID] = st
}

// Clear drops the owner's flow and reports whether one existed.
func (s *StateStore) Clear(ownerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.states[ownerID]
	delete(s.states, ownerID)
	return ok
}

// Len returns the number of open flows.
func (s *StateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// Expire drops flows idle for longer than the ttl and returns the owners
// whose flows were dropped.
func (s *StateStore) Expire() []string {
	if s.ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	var expired []string
	for owner, st := range s.states {
		if st.UpdatedAt.Before(cutoff) {
			delete(s.states, owner)
			expired = append(expired, owner)
		}
	}
	return expired
}
