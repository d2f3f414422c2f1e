package auth

import (
	"context"
	"sync"
	"time"
)

// StateStore is a thread-safe in-memory registry of outstanding OAuth
// state tokens with TTL eviction. A state can be consumed once.
type StateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

func NewStateStore(ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateStore{
		states: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *StateStore) Put(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = s.now()
}

// Consume removes state and reports whether it was present and unexpired.
func (s *StateStore) Consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	issued, ok := s.states[state]
	if !ok {
		return false
	}
	delete(s.states, state)
	return s.now().Sub(issued) <= s.ttl
}

// Len returns the number of outstanding states.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Cleanup removes expired states.
func (s *StateStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for state, issued := range s.states {
		if now.Sub(issued) > s.ttl {
			delete(s.states, state)
		}
	}
}

// Run calls Cleanup every interval until ctx is done.
func (s *StateStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
