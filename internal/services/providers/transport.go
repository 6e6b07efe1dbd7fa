// Package providers contains the provider transport, the outcome
// classification adapter, and the concrete place-data providers.
package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/vicinity/internal/interfaces"
)

// URLBuilder renders the full request URL for one provider call. The built
// URL may carry credentials; transports must never log it unredacted.
type URLBuilder func(q interfaces.ProviderQuery) string

type endpoint struct {
	buildURL URLBuilder
	limiter  *rate.Limiter
}

// HTTPTransport performs provider HTTP calls with per-provider courtesy
// pacing. This pacing smooths bursts toward the provider; hard budget caps
// live in the cost guard.
type HTTPTransport struct {
	httpClient *http.Client
	logger     arbor.ILogger
	endpoints  map[string]endpoint
}

// NewHTTPTransport creates a transport with no registered endpoints.
func NewHTTPTransport(logger arbor.ILogger) *HTTPTransport {
	return &HTTPTransport{
		httpClient: &http.Client{},
		logger:     logger,
		endpoints:  make(map[string]endpoint),
	}
}

// Register adds a provider endpoint. ratePerSec <= 0 disables pacing.
func (t *HTTPTransport) Register(provider string, buildURL URLBuilder, ratePerSec float64) {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), int(ratePerSec)+1)
	}
	t.endpoints[provider] = endpoint{buildURL: buildURL, limiter: limiter}
}

// Call performs one bounded HTTP GET for the provider. Returned errors are
// connection-level or deadline failures only; application-level responses
// come back as RawResponse regardless of status code.
func (t *HTTPTransport) Call(ctx context.Context, provider string, q interfaces.ProviderQuery, timeout time.Duration) (*interfaces.RawResponse, error) {
	ep, ok := t.endpoints[provider]
	if !ok {
		return nil, fmt.Errorf("no endpoint registered for provider %s", provider)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := ep.limiter.Wait(callCtx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, ep.buildURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for provider %s: %w", provider, err)
	}

	t.logger.Debug().
		Str("provider", provider).
		Float64("latitude", q.Latitude).
		Float64("longitude", q.Longitude).
		Int("radius", q.RadiusMeters).
		Str("keyword", q.Keyword).
		Msg("Calling provider API")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &interfaces.RawResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// Ensure HTTPTransport implements ProviderTransport interface
var _ interfaces.ProviderTransport = (*HTTPTransport)(nil)
