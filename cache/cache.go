// Package cache provides the page cache handed to request handlers as an
// explicit dependency rather than ambient global state.
package cache

import (
	"time"
)

// Store is a byte cache with per-entry TTL. Implementations are best-effort:
// a failed set or a backend outage degrades to recomputation, never to a
// request error.
type Store interface {
	GetBytes(key string) ([]byte, bool)
	SetBytes(key string, b []byte, ttl time.Duration)
	// Flush drops every entry this store owns.
	Flush()
}

// Service caches rendered page bodies for a bounded time window. The cache is
// time-based only: writes do not invalidate it, so a fresh post may stay
// invisible on a cached page until the window expires or Flush is called.
type Service struct {
	store Store
	ttl   time.Duration
}

// NewService wraps a store with a fixed TTL.
func NewService(store Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 20 * time.Second
	}
	return &Service{store: store, ttl: ttl}
}

// Get returns the cached body for a page key.
func (s *Service) Get(key string) ([]byte, bool) {
	return s.store.GetBytes(key)
}

// Set stores a page body under the service TTL.
func (s *Service) Set(key string, b []byte) {
	s.store.SetBytes(key, b, s.ttl)
}

// Flush clears all cached pages.
func (s *Service) Flush() {
	s.store.Flush()
}
