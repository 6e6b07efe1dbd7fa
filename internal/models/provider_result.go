package models

// ProviderStatus classifies the outcome of a single provider call. The set
// is exhaustive and stable; the orchestrator's fallback logic branches on it.
type ProviderStatus string

const (
	StatusSuccess       ProviderStatus = "success"
	StatusRateLimited   ProviderStatus = "rate_limited"
	StatusApiKeyInvalid ProviderStatus = "api_key_invalid"
	StatusTimeout       ProviderStatus = "timeout"
	StatusNetworkError  ProviderStatus = "network_error"
	StatusNoResults     ProviderStatus = "no_results"
	StatusUnknownError  ProviderStatus = "unknown_error"
)

// ProviderCallResult is the typed outcome of exactly one provider call.
// Expected failure modes are values here, never Go errors. Only a Success
// result may carry items; the constructors below enforce that.
type ProviderCallResult struct {
	ProviderName  string         `json:"provider_name"`
	Status        ProviderStatus `json:"status"`
	Items         []Place        `json:"items,omitempty"`
	Count         int            `json:"count"`
	HTTPStatus    *int           `json:"http_status,omitempty"`
	SkippedReason string         `json:"skipped_reason,omitempty"`
}

// SuccessResult builds a Success outcome. An empty item list is demoted to
// NoResults so the Success/items invariant holds.
func SuccessResult(provider string, items []Place, httpStatus int) ProviderCallResult {
	if len(items) == 0 {
		return ProviderCallResult{
			ProviderName: provider,
			Status:       StatusNoResults,
			HTTPStatus:   &httpStatus,
		}
	}
	return ProviderCallResult{
		ProviderName: provider,
		Status:       StatusSuccess,
		Items:        items,
		Count:        len(items),
		HTTPStatus:   &httpStatus,
	}
}

// FailureResult builds a non-Success outcome. Items are never attached.
func FailureResult(provider string, status ProviderStatus, reason string) ProviderCallResult {
	return ProviderCallResult{
		ProviderName:  provider,
		Status:        status,
		SkippedReason: reason,
	}
}

// HTTPFailureResult builds a non-Success outcome preserving the raw HTTP
// status when one was available.
func HTTPFailureResult(provider string, status ProviderStatus, httpStatus int, reason string) ProviderCallResult {
	return ProviderCallResult{
		ProviderName:  provider,
		Status:        status,
		HTTPStatus:    &httpStatus,
		SkippedReason: reason,
	}
}

// Attempt is one entry of the ordered attempt log returned as response
// metadata. It records what was tried without influencing decisions.
type Attempt struct {
	Provider     string         `json:"provider"`
	Status       ProviderStatus `json:"status"`
	Count        int            `json:"count"`
	RadiusMeters int            `json:"radius_meters"`
	Keyword      string         `json:"keyword"`
}
