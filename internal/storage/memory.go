package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend is an in-process Backend. It is the fallback when the
// configured backend cannot be opened, and the test double for everything else.
type MemoryBackend struct {
	mu    sync.RWMutex
	data  map[string][]byte
	quota int64

	// Error injection for testing
	GetErr    error
	SetErr    error
	RemoveErr error
}

// NewMemoryBackend creates an empty backend. quota <= 0 means DefaultQuota.
func NewMemoryBackend(quota int64) *MemoryBackend {
	if quota <= 0 {
		quota = DefaultQuota
	}
	return &MemoryBackend{data: make(map[string][]byte), quota: quota}
}

// Quota implements Quotaer.
func (m *MemoryBackend) Quota() int64 { return m.quota }

// Get implements Backend.
func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(ctx context.Context, key string, value []byte) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var used int64
	for k, v := range m.data {
		if k != key {
			used += int64(len(v))
		}
	}
	if used+int64(len(value)) > m.quota {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrQuotaExceeded, len(value), used, m.quota)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

// Remove implements Backend.
func (m *MemoryBackend) Remove(ctx context.Context, key string) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Put stores a raw value, bypassing quota and error injection (for testing).
func (m *MemoryBackend) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
}
