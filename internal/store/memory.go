package store

import "sync"

// MemoryStore is an in-process Store. Used in tests and when no database
// path is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string

	// GetError, if set, will be returned by Get.
	GetError error

	// SetError, if set, will be returned by Set.
	SetError error
}

// NewMemoryStore creates a MemoryStore seeded with values.
func NewMemoryStore(values map[string]string) *MemoryStore {
	m := &MemoryStore{values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Get returns the value stored under key.
func (m *MemoryStore) Get(key string) (string, bool, error) {
	if m.GetError != nil {
		return "", false, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemoryStore) Set(key, value string) error {
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

// Delete removes key.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}
