// Package cache keeps versions, listings and resolved documents in memory
// and drops them when the docs tree changes. Invalidation sources are a
// filesystem watcher, a NATS subject shared by all instances and manual
// clears; a scheduled job warms listings and a SQLite store persists
// rendered bodies across restarts.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Stats is a snapshot of store counters.
type Stats struct {
	Entries       int    `json:"entries"`
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Invalidations uint64 `json:"invalidations"`
}

type entry struct {
	value   any
	expires time.Time
}

// Store is a mutex guarded TTL map. A non-positive TTL never expires
// entries.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
	stats   Stats
}

// NewStore returns an empty store.
func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

// Get returns the live value for key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if ok && s.ttl > 0 && !s.now().Before(e.expires) {
		delete(s.entries, key)
		ok = false
	}
	if !ok {
		s.stats.Misses++
		return nil, false
	}
	s.stats.Hits++
	return e.value, true
}

// Set stores value under key.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry{value: value}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.entries[key] = e
}

// DeletePrefix removes every key starting with prefix and returns how many
// were removed.
func (s *Store) DeletePrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	s.stats.Invalidations++
}

// Stats returns current counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Entries = len(s.entries)
	return st
}
