// Package sponsor flags place candidates that carry a paid placement. The
// registry lives in key/value storage so operators can manage entries
// without a redeploy.
package sponsor

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/interfaces"
	"github.com/ternarybob/vicinity/internal/models"
)

// keyPrefix namespaces sponsorship entries in the shared KV store. The value
// is the RFC3339 expiry of the sponsorship.
const keyPrefix = "sponsor:"

// Service implements the SponsorService interface over key/value storage.
type Service struct {
	kvStorage interfaces.KeyValueStorage
	logger    arbor.ILogger
}

// NewService creates a sponsorship registry service.
func NewService(kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) *Service {
	return &Service{
		kvStorage: kvStorage,
		logger:    logger,
	}
}

// Decorate sets the sponsorship flag and expiry on registered places. The
// expiry is carried as-is; whether it is still valid is the ranker's call.
func (s *Service) Decorate(ctx context.Context, places []models.Place) []models.Place {
	for i := range places {
		value, err := s.kvStorage.Get(ctx, keyPrefix+places[i].DedupKey())
		if err != nil {
			continue // not registered
		}

		until, err := time.Parse(time.RFC3339, value)
		if err != nil {
			s.logger.Warn().
				Str("place", places[i].Name).
				Str("value", value).
				Msg("Unparseable sponsorship expiry, leaving place organic")
			continue
		}

		places[i].Sponsored = true
		places[i].SponsoredUntil = &until
	}
	return places
}

// Register adds or refreshes a sponsorship entry for a place.
func (s *Service) Register(ctx context.Context, place *models.Place, until time.Time) error {
	return s.kvStorage.Set(ctx, keyPrefix+place.DedupKey(), until.Format(time.RFC3339), "sponsorship for "+place.Name)
}

// Ensure Service implements SponsorService interface
var _ interfaces.SponsorService = (*Service)(nil)
