package models

// SearchRequest represents a single discovery request. It is immutable for
// the duration of one orchestration.
type SearchRequest struct {
	Latitude     float64        `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude    float64        `json:"longitude" validate:"gte=-180,lte=180"`
	RadiusMeters int            `json:"radius_meters" validate:"gt=0"`
	Prompt       string         `json:"prompt,omitempty"`
	Locale       string         `json:"locale,omitempty"`
	Filters      *SearchFilters `json:"filters,omitempty"`
}

// SearchFilters carries optional structured filters supplied alongside the
// free-text prompt.
type SearchFilters struct {
	BudgetTier int      `json:"budget_tier,omitempty" validate:"gte=0,lte=4"`
	Categories []string `json:"categories,omitempty"`
	Dietary    []string `json:"dietary,omitempty"`
}

// NormalizedQuery is the deterministic derivation of a SearchRequest's
// free-text prompt. It is never mutated after creation.
type NormalizedQuery struct {
	Keyword      string   `json:"keyword"`
	LocationHint string   `json:"location_hint,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	PriceTier    int      `json:"price_tier,omitempty"` // 0 = no signal, 1 = budget .. 4 = premium
}

// HasTag reports whether the query carries the given category tag.
func (q *NormalizedQuery) HasTag(tag string) bool {
	for _, t := range q.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DiscoveryResult is the fully-resolved response of one orchestration. The
// caller always receives a well-formed result; emptiness is communicated via
// an empty Places slice plus the attempt log.
type DiscoveryResult struct {
	RequestID string    `json:"request_id"`
	Places    []Place   `json:"places"`
	Attempts  []Attempt `json:"attempts"`
	CacheHit  bool      `json:"cache_hit"`
	Keyword   string    `json:"keyword"`
}
