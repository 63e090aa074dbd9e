package storage

import (
	"context"
	"errors"
	"sync"
)

// MemoryStorage is an in-process BlobStorage used by tests and local
// development. Writes can be forced to fail to exercise storage error paths.
type MemoryStorage struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	types   map[string]string
	failing bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		blobs: make(map[string][]byte),
		types: make(map[string]string),
	}
}

// SetFailing makes subsequent Store calls fail, simulating an unavailable backend.
func (m *MemoryStorage) SetFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

func (m *MemoryStorage) Store(ctx context.Context, key, contentType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return errors.New("storage backend unavailable")
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	m.blobs[key] = buf
	m.types[key] = contentType
	return nil
}

func (m *MemoryStorage) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

func (m *MemoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.blobs[key]
	return ok, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, key)
	delete(m.types, key)
	return nil
}
