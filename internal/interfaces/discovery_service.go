package interfaces

import (
	"context"

	"github.com/ternarybob/vicinity/internal/models"
)

// DiscoveryService defines the engine's single exposed operation.
type DiscoveryService interface {
	// Discover runs one orchestration: cache lookup, provider attempts with
	// fallback and radius widening, merge, rank, cache write. Provider
	// failures never surface as errors; the only error returns are context
	// cancellation and internal storage faults.
	Discover(ctx context.Context, req *models.SearchRequest) (*models.DiscoveryResult, error)
}
