package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/models"
)

func testPlaces() []models.Place {
	return []models.Place{
		{ID: "p1", Name: "Pide Palace", Latitude: 41.0, Longitude: 29.0, Provider: "googleplaces"},
	}
}

func TestGetOrComputeMissThenHit(t *testing.T) {
	svc := NewService(NewMemoryStorage(), arbor.NewLogger())
	ctx := context.Background()

	computeCalls := 0
	compute := func(ctx context.Context) ([]models.Place, time.Duration, error) {
		computeCalls++
		return testPlaces(), 10 * time.Minute, nil
	}

	places, hit, err := svc.GetOrCompute(ctx, "key-1", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, places, 1)

	places, hit, err = svc.GetOrCompute(ctx, "key-1", compute)
	require.NoError(t, err)
	assert.True(t, hit, "second call within TTL must be a cache hit")
	assert.Len(t, places, 1)
	assert.Equal(t, 1, computeCalls, "second call must not recompute")
}

func TestGetOrComputeExpiryTriggersRecompute(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(NewMemoryStorage(), arbor.NewLogger(), WithClock(func() time.Time { return current }))
	ctx := context.Background()

	computeCalls := 0
	compute := func(ctx context.Context) ([]models.Place, time.Duration, error) {
		computeCalls++
		return nil, 45 * time.Second, nil // negative-cache outcome
	}

	_, _, err := svc.GetOrCompute(ctx, "key-1", compute)
	require.NoError(t, err)

	// Within the negative TTL: no recompute
	current = current.Add(30 * time.Second)
	_, hit, err := svc.GetOrCompute(ctx, "key-1", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, computeCalls, "recompute before negative TTL elapsed")

	// After the negative TTL: providers are consulted again
	current = current.Add(20 * time.Second)
	_, hit, err = svc.GetOrCompute(ctx, "key-1", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, computeCalls, "expired entry must trigger recompute")
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	svc := NewService(NewMemoryStorage(), arbor.NewLogger())
	ctx := context.Background()

	computeCalls := 0
	compute := func(ctx context.Context) ([]models.Place, time.Duration, error) {
		computeCalls++
		if computeCalls == 1 {
			return nil, 0, errors.New("orchestration aborted")
		}
		return testPlaces(), time.Minute, nil
	}

	_, _, err := svc.GetOrCompute(ctx, "key-1", compute)
	require.Error(t, err)

	places, hit, err := svc.GetOrCompute(ctx, "key-1", compute)
	require.NoError(t, err)
	assert.False(t, hit, "a failed compute must not leave a cache entry")
	assert.Len(t, places, 1)
	assert.Equal(t, 2, computeCalls)
}

// TestStampedeCoalescing verifies the stampede guard: many concurrent
// identical requests against a cold cache execute the compute at most once.
func TestStampedeCoalescing(t *testing.T) {
	svc := NewService(NewMemoryStorage(), arbor.NewLogger())
	ctx := context.Background()

	var computeCalls atomic.Int32
	compute := func(ctx context.Context) ([]models.Place, time.Duration, error) {
		computeCalls.Add(1)
		time.Sleep(50 * time.Millisecond) // hold the flight open
		return testPlaces(), time.Minute, nil
	}

	const concurrency = 200
	var wg sync.WaitGroup
	var misses atomic.Int32
	errs := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			places, hit, err := svc.GetOrCompute(ctx, "hot-key", compute)
			if err != nil {
				errs <- err
				return
			}
			if !hit {
				misses.Add(1)
			}
			if len(places) != 1 {
				errs <- errors.New("coalesced caller received wrong result")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, int32(1), computeCalls.Load(), "stampede must coalesce to one compute")
	assert.Equal(t, int32(1), misses.Load(), "only the caller that ran compute reports a miss")
}

func TestFingerprint(t *testing.T) {
	q := models.NormalizedQuery{Keyword: "pizza"}

	base := Fingerprint(q, 41.02301, 28.97802, 5000)

	// Sub-rounding coordinate jitter maps to the same key
	assert.Equal(t, base, Fingerprint(q, 41.023012, 28.978018, 5000))

	// Different radius, keyword or location changes the key
	assert.NotEqual(t, base, Fingerprint(q, 41.02301, 28.97802, 6000))
	assert.NotEqual(t, base, Fingerprint(models.NormalizedQuery{Keyword: "burger"}, 41.02301, 28.97802, 5000))
	assert.NotEqual(t, base, Fingerprint(q, 41.1, 28.97802, 5000))
}
