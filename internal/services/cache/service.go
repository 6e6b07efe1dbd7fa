// Package cache provides the cache-aside layer around the discovery
// pipeline: fingerprint-keyed reads, TTL-by-outcome writes, and stampede
// protection so concurrent identical requests share one computation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/singleflight"

	"github.com/ternarybob/vicinity/internal/interfaces"
	"github.com/ternarybob/vicinity/internal/models"
)

// Coordinates are rounded to this many decimal places before fingerprinting
// so nearby callers share cache entries (~11m at 4 decimals).
const fingerprintPrecision = 4

// Service implements the CacheService interface.
type Service struct {
	storage interfaces.CacheStorage
	logger  arbor.ILogger
	group   singleflight.Group
	now     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClock injects a clock, used by tests to control entry expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a cache service over the given storage.
func NewService(storage interfaces.CacheStorage, logger arbor.ILogger, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fingerprint derives the cache key for an effective query: the normalized
// keyword plus rounded coordinates and radius.
func Fingerprint(q models.NormalizedQuery, latitude, longitude float64, radiusMeters int) string {
	raw := fmt.Sprintf("%s|%.*f|%.*f|%d",
		q.Keyword,
		fingerprintPrecision, latitude,
		fingerprintPrecision, longitude,
		radiusMeters)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// GetOrCompute returns the cached places for key if a fresh entry exists,
// otherwise runs compute and stores its result. Concurrent callers with the
// same key are coalesced onto one in-flight computation. A compute that
// fails (including cancellation) writes nothing.
func (s *Service) GetOrCompute(ctx context.Context, key string, compute interfaces.CacheComputeFunc) ([]models.Place, bool, error) {
	if places, ok := s.lookup(ctx, key); ok {
		return places, true, nil
	}

	// Only the caller whose closure actually runs compute reports a miss.
	// Callers coalesced onto the flight, and a winner whose re-check finds a
	// fresh entry, served cached work and report a hit.
	computed := false
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Re-check after acquiring the flight: another caller may have
		// finished and written the entry between our miss and now.
		if places, ok := s.lookup(ctx, key); ok {
			return places, nil
		}

		computed = true
		places, ttl, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		entry := &models.CacheEntry{
			Key:       key,
			Places:    places,
			TTL:       ttl,
			WrittenAt: s.now(),
		}
		if putErr := s.storage.Put(ctx, entry); putErr != nil {
			// Serving the computed result matters more than caching it
			s.logger.Warn().Err(putErr).Str("key", key).Msg("Failed to write cache entry")
		}
		return places, nil
	})
	if err != nil {
		return nil, false, err
	}

	return value.([]models.Place), !computed, nil
}

// lookup reads a fresh entry, treating storage faults and stale entries as
// misses.
func (s *Service) lookup(ctx context.Context, key string) ([]models.Place, bool) {
	entry, err := s.storage.Get(ctx, key)
	if err != nil {
		if err != interfaces.ErrCacheMiss {
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, treating as miss")
		}
		return nil, false
	}
	if !entry.Fresh(s.now()) {
		return nil, false
	}
	return entry.Places, true
}

// Ensure Service implements CacheService interface
var _ interfaces.CacheService = (*Service)(nil)
