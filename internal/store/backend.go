package store

import (
	"context"
	"sync"
)

// Backend is a flat key/value namespace. Values are opaque encoded records;
// ordering and filtering happen at read time in Store.
type Backend interface {
	Set(ctx context.Context, key string, value []byte) error
	GetAll(ctx context.Context) (map[string][]byte, error)
	Remove(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
	Close() error
}

// MemoryBackend keeps values in a map. It is safe for concurrent use.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBackend) GetAll(_ context.Context) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.values))
	for k, v := range m.values {
		out[k] = append([]byte(nil), v...)
	}
	return out, nil
}

func (m *MemoryBackend) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *MemoryBackend) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string][]byte)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
