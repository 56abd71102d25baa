package blob

import (
	"bytes"
	"context"
	"sync"

	"github.com/dmitrijs2005/filekeeper/internal/common"
)

// MemoryStore is a map-backed Store for tests and the in-memory development
// mode. FailDeletes can be set by tests to simulate a blob that refuses to
// die during cascade deletion.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	FailDeletes map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := NewStorageKey()
	m.blobs[key] = bytes.Clone(data)
	return key, nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return bytes.Clone(data), nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.FailDeletes[key]; ok {
		return err
	}
	delete(m.blobs, key)
	return nil
}

// Len reports the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// Keys returns the storage keys currently held. For tests.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.blobs))
	for k := range m.blobs {
		keys = append(keys, k)
	}
	return keys
}
