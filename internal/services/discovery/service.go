// Package discovery orchestrates one search across providers: admission
// through the cost guard, primary attempt, conditional fallback, a single
// radius widening, then merge, rank and cache write.
package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/common"
	"github.com/ternarybob/vicinity/internal/interfaces"
	"github.com/ternarybob/vicinity/internal/models"
	"github.com/ternarybob/vicinity/internal/services/cache"
	"github.com/ternarybob/vicinity/internal/services/merge"
	"github.com/ternarybob/vicinity/internal/services/normalize"
	"github.com/ternarybob/vicinity/internal/services/rank"
)

// SearchStartedPayload is published on the event bus when an orchestration
// begins.
type SearchStartedPayload struct {
	RequestID string `json:"request_id"`
	Keyword   string `json:"keyword"`
}

// ProviderSkippedPayload is published when the cost guard denies a provider
// call.
type ProviderSkippedPayload struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
}

// Service implements the DiscoveryService interface.
type Service struct {
	config    common.DiscoveryConfig
	primary   interfaces.PlaceProvider
	secondary interfaces.PlaceProvider
	costGuard interfaces.CostGuard
	cache     interfaces.CacheService
	sponsor   interfaces.SponsorService
	events    interfaces.EventService
	validate  *validator.Validate
	logger    arbor.ILogger
	now       func() time.Time
}

// Option configures optional service behaviour.
type Option func(*Service)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the discovery orchestrator. The sponsor service may be
// nil, in which case no sponsorship decoration happens.
func NewService(
	config common.DiscoveryConfig,
	primary interfaces.PlaceProvider,
	secondary interfaces.PlaceProvider,
	costGuard interfaces.CostGuard,
	cacheService interfaces.CacheService,
	sponsorService interfaces.SponsorService,
	eventService interfaces.EventService,
	logger arbor.ILogger,
	opts ...Option,
) *Service {
	s := &Service{
		config:    config,
		primary:   primary,
		secondary: secondary,
		costGuard: costGuard,
		cache:     cacheService,
		sponsor:   sponsorService,
		events:    eventService,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discover runs one orchestration for the request. Provider failures are
// absorbed into the attempt log; the only error returns are invalid input
// and context cancellation.
func (s *Service) Discover(ctx context.Context, req *models.SearchRequest) (*models.DiscoveryResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	query := normalize.Normalize(req.Prompt, req.Locale)
	query = normalize.MergeFilters(query, req.Filters)

	requestID := uuid.New().String()
	key := cache.Fingerprint(query, req.Latitude, req.Longitude, req.RadiusMeters)

	s.publish(ctx, interfaces.EventSearchStarted, SearchStartedPayload{
		RequestID: requestID,
		Keyword:   query.Keyword,
	})

	var attempts []models.Attempt
	places, cacheHit, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) ([]models.Place, time.Duration, error) {
		ranked, tried, err := s.orchestrate(ctx, req, query)
		if err != nil {
			return nil, 0, err
		}
		attempts = tried

		ttl := s.config.PositiveCacheTTL
		if len(ranked) == 0 {
			ttl = s.config.NegativeCacheTTL
		}
		return ranked, ttl, nil
	})
	if err != nil {
		return nil, err
	}

	if places == nil {
		places = []models.Place{}
	}
	if attempts == nil {
		attempts = []models.Attempt{}
	}

	result := &models.DiscoveryResult{
		RequestID: requestID,
		Places:    places,
		Attempts:  attempts,
		CacheHit:  cacheHit,
		Keyword:   query.Keyword,
	}

	s.publish(ctx, interfaces.EventSearchCompleted, result)

	s.logger.Info().
		Str("request_id", requestID).
		Str("keyword", query.Keyword).
		Int("places", len(result.Places)).
		Int("attempts", len(result.Attempts)).
		Bool("cache_hit", result.CacheHit).
		Msg("Discovery completed")

	return result, nil
}

// orchestrate runs the provider attempt sequence once through, widening the
// radius and broadening the keyword at most once when everything comes back
// empty. It returns an error only for context cancellation, so nothing gets
// cached for an aborted request.
func (s *Service) orchestrate(ctx context.Context, req *models.SearchRequest, query models.NormalizedQuery) ([]models.Place, []models.Attempt, error) {
	radius := req.RadiusMeters
	keyword := query.Keyword
	widened := false

	var attempts []models.Attempt

	for {
		q := interfaces.ProviderQuery{
			Latitude:     req.Latitude,
			Longitude:    req.Longitude,
			RadiusMeters: radius,
			Keyword:      keyword,
		}

		primary := s.call(ctx, s.primary, q, &attempts)
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		lists := [][]models.Place{primary.Items}
		if s.needsFallback(primary, query) {
			secondary := s.call(ctx, s.secondary, q, &attempts)
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			lists = append(lists, secondary.Items)
		}

		merged := merge.Merge(merge.Config{
			DistanceThresholdMeters: s.config.DedupDistanceMeters,
			NameSimilarityThreshold: s.config.NameSimilarityThreshold,
			ProviderPriority:        s.config.ProviderPriority,
		}, lists...)

		if len(merged) == 0 && !widened && radius < s.config.MaxRadiusMeters {
			widened = true
			radius = s.widenRadius(radius)
			keyword = normalize.BroadenKeyword(keyword)

			s.logger.Info().
				Int("radius_meters", radius).
				Str("keyword", keyword).
				Msg("No candidates found, widening radius and retrying")
			continue
		}

		return s.finalize(ctx, req, merged), attempts, nil
	}
}

// call admits one provider attempt through the cost guard and records it in
// the attempt log. A denial is logged as a timeout-equivalent attempt so the
// fallback logic treats an exhausted budget like an unavailable provider.
func (s *Service) call(ctx context.Context, provider interfaces.PlaceProvider, q interfaces.ProviderQuery, attempts *[]models.Attempt) models.ProviderCallResult {
	var result models.ProviderCallResult

	allowed, reason := s.costGuard.TryAdmit(provider.Name())
	if !allowed {
		result = models.FailureResult(provider.Name(), models.StatusTimeout, reason)

		s.publish(ctx, interfaces.EventProviderSkipped, ProviderSkippedPayload{
			Provider: provider.Name(),
			Reason:   reason,
		})
		s.logger.Warn().
			Str("provider", provider.Name()).
			Str("reason", reason).
			Msg("Provider call denied by cost guard")
	} else {
		result = provider.Search(ctx, q)
	}

	*attempts = append(*attempts, models.Attempt{
		Provider:     provider.Name(),
		Status:       result.Status,
		Count:        result.Count,
		RadiusMeters: q.RadiusMeters,
		Keyword:      q.Keyword,
	})

	return result
}

// needsFallback decides whether the secondary provider is consulted after
// the primary attempt. Cultural intent always brings in the secondary index
// because the primary one has weak coverage there.
func (s *Service) needsFallback(primary models.ProviderCallResult, query models.NormalizedQuery) bool {
	if primary.Status != models.StatusSuccess {
		return true
	}
	if primary.Count < s.config.MinPrimaryResults {
		return true
	}
	for _, tag := range query.Tags {
		if normalize.IsCulturalTag(tag) {
			return true
		}
	}
	return false
}

// finalize decorates, ranks and truncates the merged candidate set.
func (s *Service) finalize(ctx context.Context, req *models.SearchRequest, merged []models.Place) []models.Place {
	if s.sponsor != nil {
		merged = s.sponsor.Decorate(ctx, merged)
	}

	ranked := rank.Rank(rank.Params{
		OriginLatitude:  req.Latitude,
		OriginLongitude: req.Longitude,
		SponsorBoostCap: s.config.SponsorBoostCap,
		Now:             s.now(),
	}, merged)

	if len(ranked) > s.config.MaxResults {
		ranked = ranked[:s.config.MaxResults]
	}
	return ranked
}

func (s *Service) widenRadius(radius int) int {
	next := int(float64(radius) * s.config.RadiusWidenFactor)
	if next > s.config.MaxRadiusMeters {
		next = s.config.MaxRadiusMeters
	}
	return next
}

func (s *Service) publish(ctx context.Context, eventType interfaces.EventType, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload}); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("Event publish failed")
	}
}

// Ensure Service implements DiscoveryService interface
var _ interfaces.DiscoveryService = (*Service)(nil)
