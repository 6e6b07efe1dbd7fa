package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/vicinity/internal/models"
)

// ProviderQuery carries the effective parameters of one provider call.
type ProviderQuery struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	Keyword      string
}

// RawResponse is the transport-level result of a provider HTTP call before
// classification.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// ProviderTransport performs the raw network call for a provider. It is
// owned by infrastructure; adapters wrap it and classify its outcomes.
// A returned error indicates a connection-level or deadline failure, never
// an application-level provider response.
type ProviderTransport interface {
	Call(ctx context.Context, provider string, q ProviderQuery, timeout time.Duration) (*RawResponse, error)
}

// PlaceProvider is one external place-data source. Search performs exactly
// one bounded call and classifies the outcome; it never returns an error for
// expected failure modes.
type PlaceProvider interface {
	Name() string
	Search(ctx context.Context, q ProviderQuery) models.ProviderCallResult
}
