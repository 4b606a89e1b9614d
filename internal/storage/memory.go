package storage

import (
	"context"
	"sync"
)

// Memory keeps blobs in process memory. Used when no durable backend is
// configured and as the default adapter in tests.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory creates an empty in-memory adapter
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, blob []byte) error {
	v := make([]byte, len(blob))
	copy(v, blob)

	m.mu.Lock()
	m.blobs[key] = v
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
