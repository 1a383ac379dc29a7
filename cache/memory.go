package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	body      []byte
	expiresAt time.Time
}

// MemoryStore is a single-instance in-process store used when Redis is not
// configured. Expired entries are dropped lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}}
}

// GetBytes returns cached bytes for a key.
func (m *MemoryStore) GetBytes(key string) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return entry.body, true
}

// SetBytes stores bytes with the given TTL.
func (m *MemoryStore) SetBytes(key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{body: b, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

// Flush drops every entry.
func (m *MemoryStore) Flush() {
	m.mu.Lock()
	m.entries = map[string]memoryEntry{}
	m.mu.Unlock()
}
