package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/vicinity/internal/models"
)

// ErrCacheMiss is returned by CacheStorage when no entry exists for a key.
var ErrCacheMiss = errors.New("cache entry not found")

// CacheStorage is the persistent store behind the cache-aside layer. Keys
// are opaque fingerprint strings.
type CacheStorage interface {
	// Get retrieves an entry by key, returns ErrCacheMiss if absent.
	Get(ctx context.Context, key string) (*models.CacheEntry, error)

	// Put inserts or replaces an entry.
	Put(ctx context.Context, entry *models.CacheEntry) error

	// Delete removes an entry. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// CacheComputeFunc produces the value for a key on a cache miss. It returns
// the ranked places and the TTL the result should be stored with.
type CacheComputeFunc func(ctx context.Context) ([]models.Place, time.Duration, error)

// CacheService is the cache-aside layer with stampede protection: for any
// one key at most one compute runs at a time, concurrent identical requests
// share its result.
type CacheService interface {
	// GetOrCompute returns the cached places for key if a fresh entry
	// exists, otherwise runs compute (coalesced across concurrent callers)
	// and stores its result. The second return reports whether the value
	// came from cache or a coalesced in-flight computation rather than a
	// compute executed for this caller.
	GetOrCompute(ctx context.Context, key string, compute CacheComputeFunc) ([]models.Place, bool, error)
}
