package kv

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// Memory is an in-process KeyValueStore honoring per-key TTLs. It backs
// tests and local development without a Redis instance.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

var _ KeyValueStore = (*Memory)(nil)

func NewMemoryKV() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (m *Memory) Set(key, value string, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: value}
	if exp > 0 {
		entry.expiresAt = time.Now().Add(exp)
	}
	m.entries[key] = entry
	return nil
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return "", ErrNotFound
	}
	return entry.value, nil
}

func (m *Memory) Del(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		return "", ErrNotFound
	}
	delete(m.entries, key)
	return key, nil
}

// TTL reports the remaining lifetime of a key. Zero duration with ok=true
// means the key has no expiry.
func (m *Memory) TTL(key string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return 0, false
	}
	if entry.expiresAt.IsZero() {
		return 0, true
	}
	return time.Until(entry.expiresAt), true
}
