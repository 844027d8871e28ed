// Package memory implements the process-local fallback tier of the cache
// store. It mirrors db.Store over a mutex-guarded map with lazy TTL expiry:
// expired entries are dropped on read, never background-swept.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/voceria-ai/voceria/internal/db"
)

var _ db.Store = (*Store)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Store is an in-process key-value store with the same TTL semantics as the
// Redis tier.
type Store struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

// NewStore creates an empty in-process store.
func NewStore() *Store {
	return &Store{data: make(map[string]entry), now: time.Now}
}

// NewStoreWithClock creates a store with an injected clock (test-only).
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{data: make(map[string]entry), now: now}
}

// Get retrieves a value by key. Expired entries are removed and reported as
// db.ErrKeyNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock: a concurrent SetWithTTL may have
		// refreshed the entry between the two lock acquisitions.
		if cur, ok := s.data[key]; ok && !cur.expiresAt.IsZero() && !s.now().Before(cur.expiresAt) {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return nil, db.ErrKeyNotFound
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// SetWithTTL stores a value with an expiration. ttl <= 0 stores without expiry.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	v := make([]byte, len(value))
	copy(v, value)

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.data[key] = entry{value: v, expiresAt: expiresAt}
	s.mu.Unlock()
	return nil
}

// Del removes a key. Deleting an absent key is not an error.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// DeleteMatching removes all keys with the given prefix and returns the count.
func (s *Store) DeleteMatching(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			delete(s.data, key)
			n++
		}
	}
	return n, nil
}

// Ping always succeeds; the local tier has no connection to lose.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady is immediate for the local tier.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// Len reports the number of live entries, counting expired ones not yet
// lazily removed.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
