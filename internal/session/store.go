// Package session keeps each browser session's current filter selection.
// Nothing is persisted; idle sessions expire after a TTL.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"sales-dashboard/internal/filter"
)

type entry struct {
	spec     filter.Spec
	version  int
	lastSeen time.Time
}

type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func NewID() string {
	return uuid.NewString()
}

// Get returns the session's current Spec and how many times it has been
// replaced. ok is false for unknown or expired sessions.
func (s *Store) Get(id string) (spec filter.Spec, version int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[id]
	if !exists || s.expired(e) {
		return filter.Spec{}, 0, false
	}
	e.lastSeen = s.now()
	return e.spec, e.version, true
}

// Put replaces the session's Spec and returns the new version.
func (s *Store) Put(id string, spec filter.Spec) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[id]
	if !exists || s.expired(e) {
		e = &entry{}
		s.entries[id] = e
	}
	e.spec = spec
	e.version++
	e.lastSeen = s.now()
	return e.version
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops expired sessions and reports how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) expired(e *entry) bool {
	return s.now().Sub(e.lastSeen) > s.ttl
}
