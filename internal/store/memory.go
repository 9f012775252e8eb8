package store

import (
	"context"
	"sync"
)

// MemoryBackend is an in-process Backend for tests and ephemeral use.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.writes++
	return nil
}

// Modify implements Backend. The whole read-modify-write runs under one lock.
func (m *MemoryBackend) Modify(_ context.Context, key string, fn func(value string, ok bool) (string, bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	next, write, err := fn(v, ok)
	if err != nil || !write {
		return err
	}
	m.values[key] = next
	m.writes++
	return nil
}

// Writes returns how many values have been stored.
func (m *MemoryBackend) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
