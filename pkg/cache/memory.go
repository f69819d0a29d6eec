package cache

import (
	"context"
	"sync"
)

// Memory is an in-process Gateway for programs that want caching
// without an external backend, and for tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string][]byte),
	}
}

// Lookup retrieves the cached bytes for an identifier.
func (m *Memory) Lookup(_ context.Context, identifier string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.entries[identifier]
	if !ok {
		CacheMisses.Inc()
		return nil, false
	}
	CacheHits.WithLabelValues("memory").Inc()
	return data, true
}

// Store writes the bytes for an identifier. The stored copy is private:
// later mutation of data by the caller does not affect the cache.
func (m *Memory) Store(_ context.Context, identifier string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.entries[identifier] = buf
	m.mu.Unlock()

	CacheStoredBytes.Add(float64(len(data)))
	return nil
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
