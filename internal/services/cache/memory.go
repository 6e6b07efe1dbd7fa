package cache

import (
	"context"
	"sync"

	"github.com/ternarybob/vicinity/internal/interfaces"
	"github.com/ternarybob/vicinity/internal/models"
)

// MemoryStorage is a map-backed CacheStorage for tests and single-process
// deployments that do not need persistence across restarts.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
}

// NewMemoryStorage creates an empty in-memory cache store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]models.CacheEntry),
	}
}

// Get retrieves an entry by key, returns ErrCacheMiss if absent.
func (m *MemoryStorage) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	return &entry, nil
}

// Put inserts or replaces an entry.
func (m *MemoryStorage) Put(ctx context.Context, entry *models.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[entry.Key] = *entry
	return nil
}

// Delete removes an entry.
func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Ensure MemoryStorage implements CacheStorage interface
var _ interfaces.CacheStorage = (*MemoryStorage)(nil)
