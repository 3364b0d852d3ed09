package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sliding windows in process memory
type MemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[string][]time.Time)}
}

// Allow evicts timestamps older than the window, then admits the request if room remains
func (m *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := now.Add(-window)
	kept := m.requests[key][:0]
	for _, ts := range m.requests[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= limit {
		m.requests[key] = kept
		return false, nil
	}

	m.requests[key] = append(kept, now)
	return true, nil
}

// Clients returns the number of tracked client keys
func (m *MemoryStore) Clients() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Sweep drops clients whose windows are empty at now
func (m *MemoryStore) Sweep(window time.Duration, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := now.Add(-window)
	for key, stamps := range m.requests {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
			delete(m.requests, key)
		}
	}
}
