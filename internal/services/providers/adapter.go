package providers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/interfaces"
	"github.com/ternarybob/vicinity/internal/models"
)

// DecodeFunc parses a provider's 2xx payload into place candidates. A
// returned error means the payload shape was malformed or unexpected.
type DecodeFunc func(body []byte, q interfaces.ProviderQuery) ([]models.Place, error)

// Adapter wraps a transport for one provider: exactly one bounded call per
// Search, with every outcome classified into a ProviderCallResult. Expected
// failure modes are never returned as Go errors.
type Adapter struct {
	name      string
	transport interfaces.ProviderTransport
	timeout   time.Duration
	decode    DecodeFunc
	logger    arbor.ILogger
}

// NewAdapter creates a classification adapter for one provider.
func NewAdapter(name string, transport interfaces.ProviderTransport, timeout time.Duration, decode DecodeFunc, logger arbor.ILogger) *Adapter {
	return &Adapter{
		name:      name,
		transport: transport,
		timeout:   timeout,
		decode:    decode,
		logger:    logger,
	}
}

// Name returns the provider name.
func (a *Adapter) Name() string {
	return a.name
}

// Search performs one provider call and classifies the outcome:
//
//	2xx parseable non-empty body -> Success
//	2xx empty body               -> NoResults
//	401/403                      -> ApiKeyInvalid
//	429                          -> RateLimited
//	deadline exceeded            -> Timeout
//	connection-level failure     -> NetworkError
//	anything else                -> UnknownError (raw status preserved)
func (a *Adapter) Search(ctx context.Context, q interfaces.ProviderQuery) models.ProviderCallResult {
	resp, err := a.transport.Call(ctx, a.name, q, a.timeout)
	if err != nil {
		result := a.classifyError(err)
		a.logResult(result, q)
		return result
	}

	result := a.classifyResponse(resp, q)
	a.logResult(result, q)
	return result
}

func (a *Adapter) classifyError(err error) models.ProviderCallResult {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.FailureResult(a.name, models.StatusTimeout, "request exceeded provider timeout")
	case errors.As(err, &netErr) && netErr.Timeout():
		return models.FailureResult(a.name, models.StatusTimeout, "request exceeded provider timeout")
	case errors.Is(err, context.Canceled):
		return models.FailureResult(a.name, models.StatusNetworkError, "request cancelled")
	default:
		return models.FailureResult(a.name, models.StatusNetworkError, err.Error())
	}
}

func (a *Adapter) classifyResponse(resp *interfaces.RawResponse, q interfaces.ProviderQuery) models.ProviderCallResult {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return models.HTTPFailureResult(a.name, models.StatusApiKeyInvalid, resp.StatusCode, "provider rejected credentials")

	case resp.StatusCode == http.StatusTooManyRequests:
		return models.HTTPFailureResult(a.name, models.StatusRateLimited, resp.StatusCode, "provider rate limit hit")

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if len(resp.Body) == 0 {
			return models.HTTPFailureResult(a.name, models.StatusNoResults, resp.StatusCode, "empty response body")
		}
		items, err := a.decode(resp.Body, q)
		if err != nil {
			return models.HTTPFailureResult(a.name, models.StatusUnknownError, resp.StatusCode, err.Error())
		}
		return models.SuccessResult(a.name, items, resp.StatusCode)

	default:
		return models.HTTPFailureResult(a.name, models.StatusUnknownError, resp.StatusCode, "unexpected provider status")
	}
}

func (a *Adapter) logResult(result models.ProviderCallResult, q interfaces.ProviderQuery) {
	event := a.logger.Debug().
		Str("provider", a.name).
		Str("status", string(result.Status)).
		Int("count", result.Count).
		Int("radius", q.RadiusMeters).
		Str("keyword", q.Keyword)
	if result.SkippedReason != "" {
		event = event.Str("reason", result.SkippedReason)
	}
	event.Msg("Provider call classified")
}

// Ensure Adapter implements PlaceProvider interface
var _ interfaces.PlaceProvider = (*Adapter)(nil)
