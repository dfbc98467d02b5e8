package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/quitrk/stock-checker-sub001/metrics"
)

// MemoryStore is an in-process Store used when Redis is unavailable and as
// the cache backend in tests. Values are stored as marshaled JSON so the
// serialization semantics (including nil vs empty slice) match RedisStore
// exactly.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get retrieves and unmarshals a value, honoring expiry.
func (m *MemoryStore) Get(_ context.Context, key string, dest interface{}) bool {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		metrics.CacheMisses.WithLabelValues(categoryOf(key)).Inc()
		return false
	}

	if err := json.Unmarshal(entry.payload, dest); err != nil {
		metrics.CacheMisses.WithLabelValues(categoryOf(key)).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(categoryOf(key)).Inc()
	return true
}

// Set stores a value. Marshal failures are dropped, matching the best-effort
// write contract.
func (m *MemoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
}

// Len reports the number of stored entries, expired or not. Test helper.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
