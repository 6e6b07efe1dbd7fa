package providers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/common"
	"github.com/ternarybob/vicinity/internal/interfaces"
	"github.com/ternarybob/vicinity/internal/models"
)

// OpenTripMapName is the registered name of the secondary provider, a
// tourism and culture points-of-interest index.
const OpenTripMapName = "opentripmap"

type openTripMapFeature struct {
	XID   string            `json:"xid"`
	Name  string            `json:"name"`
	Kinds string            `json:"kinds,omitempty"`
	Rate  int               `json:"rate,omitempty"`
	Point *openTripMapPoint `json:"point,omitempty"`
}

type openTripMapPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// NewOpenTripMap registers the OpenTripMap radius endpoint on the transport
// and returns its classification adapter.
func NewOpenTripMap(cfg common.ProviderConfig, apiKey string, transport *HTTPTransport, logger arbor.ILogger) *Adapter {
	baseURL := cfg.BaseURL
	transport.Register(OpenTripMapName, func(q interfaces.ProviderQuery) string {
		params := url.Values{}
		params.Set("radius", strconv.Itoa(q.RadiusMeters))
		params.Set("lon", fmt.Sprintf("%f", q.Longitude))
		params.Set("lat", fmt.Sprintf("%f", q.Latitude))
		params.Set("kinds", keywordToKinds(q.Keyword))
		params.Set("format", "json")
		params.Set("apikey", apiKey)
		return baseURL + "/en/places/radius?" + params.Encode()
	}, cfg.RatePerSec)

	return NewAdapter(OpenTripMapName, transport, cfg.Timeout, decodeOpenTripMap, logger)
}

// keywordToKinds maps the keyword set onto OpenTripMap kind filters. Food
// keywords map to "foods"; cultural keywords to their POI categories.
func keywordToKinds(keyword string) string {
	kindByToken := map[string]string{
		"museum":     "museums",
		"gallery":    "museums",
		"history":    "historic",
		"tourism":    "interesting_places",
		"culture":    "cultural",
		"park":       "natural",
		"restaurant": "foods",
		"cafe":       "foods",
		"bar":        "foods",
	}

	var kinds []string
	seen := map[string]bool{}
	for _, tok := range strings.Fields(keyword) {
		kind, ok := kindByToken[tok]
		if !ok {
			kind = "foods"
		}
		if !seen[kind] {
			kinds = append(kinds, kind)
			seen[kind] = true
		}
	}
	if len(kinds) == 0 {
		return "interesting_places"
	}
	return strings.Join(kinds, ",")
}

// rateToRating converts OpenTripMap's 1..7 popularity rate onto the 5-point
// rating scale the ranker scores on. Features without a rate stay unrated.
func rateToRating(rate int) *float64 {
	if rate > 7 {
		rate = 7
	}
	rating := float64(rate) / 7.0 * 5.0
	return &rating
}

// decodeOpenTripMap converts a radius-search payload into place candidates.
// Unnamed features are skipped; they are unverified map points.
func decodeOpenTripMap(body []byte, q interfaces.ProviderQuery) ([]models.Place, error) {
	var features []openTripMapFeature
	if err := json.Unmarshal(body, &features); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}

	items := make([]models.Place, 0, len(features))
	for _, f := range features {
		if f.Name == "" || f.Point == nil {
			continue
		}

		place := models.Place{
			ID:        f.XID,
			Name:      f.Name,
			Latitude:  f.Point.Lat,
			Longitude: f.Point.Lon,
			Provider:  OpenTripMapName,
		}
		if f.Kinds != "" {
			place.Category = strings.SplitN(f.Kinds, ",", 2)[0]
		}
		if f.Rate > 0 {
			place.Rating = rateToRating(f.Rate)
		}
		items = append(items, place)
	}

	return items, nil
}
