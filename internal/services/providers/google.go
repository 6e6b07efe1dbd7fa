package providers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/common"
	"github.com/ternarybob/vicinity/internal/interfaces"
	"github.com/ternarybob/vicinity/internal/models"
)

// GooglePlacesName is the registered name of the primary provider.
const GooglePlacesName = "googleplaces"

// googleNearbyResponse represents the Google Places Nearby Search API
// response (subset of fields the engine consumes).
type googleNearbyResponse struct {
	Results      []googlePlaceResult `json:"results"`
	Status       string              `json:"status"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

type googlePlaceResult struct {
	PlaceID          string          `json:"place_id"`
	Name             string          `json:"name"`
	Geometry         *googleGeometry `json:"geometry,omitempty"`
	Rating           *float64        `json:"rating,omitempty"`
	UserRatingsTotal int             `json:"user_ratings_total,omitempty"`
	PriceLevel       *int            `json:"price_level,omitempty"`
	Types            []string        `json:"types,omitempty"`
	Photos           []googlePhoto   `json:"photos,omitempty"`
}

type googleGeometry struct {
	Location *googleLatLng `json:"location,omitempty"`
}

type googleLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googlePhoto struct {
	PhotoReference string `json:"photo_reference"`
}

// NewGooglePlaces registers the Google Places nearby-search endpoint on the
// transport and returns its classification adapter.
func NewGooglePlaces(cfg common.ProviderConfig, apiKey string, transport *HTTPTransport, logger arbor.ILogger) *Adapter {
	baseURL := cfg.BaseURL
	transport.Register(GooglePlacesName, func(q interfaces.ProviderQuery) string {
		params := url.Values{}
		params.Set("location", fmt.Sprintf("%f,%f", q.Latitude, q.Longitude))
		params.Set("radius", strconv.Itoa(q.RadiusMeters))
		params.Set("keyword", q.Keyword)
		params.Set("key", apiKey)
		return baseURL + "/nearbysearch/json?" + params.Encode()
	}, cfg.RatePerSec)

	return NewAdapter(GooglePlacesName, transport, cfg.Timeout, decodeGooglePlaces, logger)
}

// decodeGooglePlaces converts a nearby-search payload into place candidates.
// ZERO_RESULTS decodes to an empty list; any other non-OK status is an
// unexpected payload.
func decodeGooglePlaces(body []byte, q interfaces.ProviderQuery) ([]models.Place, error) {
	var apiResp googleNearbyResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}

	if apiResp.Status != "OK" && apiResp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("API error: %s - %s", apiResp.Status, apiResp.ErrorMessage)
	}

	items := make([]models.Place, 0, len(apiResp.Results))
	for _, result := range apiResp.Results {
		if result.Geometry == nil || result.Geometry.Location == nil {
			continue
		}

		place := models.Place{
			ID:               result.PlaceID,
			Name:             result.Name,
			Latitude:         result.Geometry.Location.Lat,
			Longitude:        result.Geometry.Location.Lng,
			Rating:           result.Rating,
			UserRatingsTotal: result.UserRatingsTotal,
			PriceLevel:       result.PriceLevel,
			Provider:         GooglePlacesName,
		}
		if len(result.Types) > 0 {
			place.Category = result.Types[0]
		}
		if len(result.Photos) > 0 {
			place.PhotoReference = result.Photos[0].PhotoReference
		}
		items = append(items, place)
	}

	return items, nil
}
