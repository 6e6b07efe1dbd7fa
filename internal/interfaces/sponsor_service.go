package interfaces

import (
	"context"

	"github.com/ternarybob/vicinity/internal/models"
)

// SponsorService decorates place candidates with sponsorship flags from the
// operator-managed registry.
type SponsorService interface {
	// Decorate returns the places with Sponsored/SponsoredUntil set for
	// every place present in the registry. Lookup failures leave the place
	// organic; decoration never fails a request.
	Decorate(ctx context.Context, places []models.Place) []models.Place
}
