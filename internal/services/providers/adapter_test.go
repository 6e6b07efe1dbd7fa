package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/interfaces"
	"github.com/ternarybob/vicinity/internal/models"
)

// fakeTransport returns a canned response or error for every call.
type fakeTransport struct {
	resp  *interfaces.RawResponse
	err   error
	calls int
}

func (f *fakeTransport) Call(ctx context.Context, provider string, q interfaces.ProviderQuery, timeout time.Duration) (*interfaces.RawResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

const googleOKBody = `{
	"status": "OK",
	"results": [
		{
			"place_id": "abc123",
			"name": "Pide Palace",
			"geometry": {"location": {"lat": 40.9901, "lng": 29.0301}},
			"rating": 4.4,
			"user_ratings_total": 812,
			"price_level": 2,
			"types": ["restaurant", "food"],
			"photos": [{"photo_reference": "ref-1"}]
		}
	]
}`

func testQuery() interfaces.ProviderQuery {
	return interfaces.ProviderQuery{
		Latitude:     40.99,
		Longitude:    29.03,
		RadiusMeters: 5000,
		Keyword:      "restaurant",
	}
}

func TestAdapterClassification(t *testing.T) {
	tests := []struct {
		name       string
		resp       *interfaces.RawResponse
		err        error
		wantStatus models.ProviderStatus
		wantCount  int
		wantHTTP   int
	}{
		{
			name:       "2xx with parseable non-empty body",
			resp:       &interfaces.RawResponse{StatusCode: 200, Body: []byte(googleOKBody)},
			wantStatus: models.StatusSuccess,
			wantCount:  1,
			wantHTTP:   200,
		},
		{
			name:       "2xx with empty body",
			resp:       &interfaces.RawResponse{StatusCode: 200, Body: nil},
			wantStatus: models.StatusNoResults,
			wantHTTP:   200,
		},
		{
			name:       "2xx with zero results payload",
			resp:       &interfaces.RawResponse{StatusCode: 200, Body: []byte(`{"status":"ZERO_RESULTS","results":[]}`)},
			wantStatus: models.StatusNoResults,
			wantHTTP:   200,
		},
		{
			name:       "401 unauthorized",
			resp:       &interfaces.RawResponse{StatusCode: 401, Body: []byte(`{}`)},
			wantStatus: models.StatusApiKeyInvalid,
			wantHTTP:   401,
		},
		{
			name:       "403 forbidden",
			resp:       &interfaces.RawResponse{StatusCode: 403, Body: []byte(`{}`)},
			wantStatus: models.StatusApiKeyInvalid,
			wantHTTP:   403,
		},
		{
			name:       "429 rate limited",
			resp:       &interfaces.RawResponse{StatusCode: 429, Body: []byte(`{}`)},
			wantStatus: models.StatusRateLimited,
			wantHTTP:   429,
		},
		{
			name:       "timeout",
			err:        context.DeadlineExceeded,
			wantStatus: models.StatusTimeout,
		},
		{
			name:       "connection failure",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: models.StatusNetworkError,
		},
		{
			name:       "5xx unexpected status",
			resp:       &interfaces.RawResponse{StatusCode: 503, Body: []byte(`oops`)},
			wantStatus: models.StatusUnknownError,
			wantHTTP:   503,
		},
		{
			name:       "malformed payload",
			resp:       &interfaces.RawResponse{StatusCode: 200, Body: []byte(`{not json`)},
			wantStatus: models.StatusUnknownError,
			wantHTTP:   200,
		},
		{
			name:       "unexpected payload status",
			resp:       &interfaces.RawResponse{StatusCode: 200, Body: []byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`)},
			wantStatus: models.StatusUnknownError,
			wantHTTP:   200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{resp: tt.resp, err: tt.err}
			adapter := NewAdapter(GooglePlacesName, transport, time.Second, decodeGooglePlaces, arbor.NewLogger())

			result := adapter.Search(context.Background(), testQuery())

			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantCount, result.Count)
			assert.Equal(t, 1, transport.calls, "adapter must perform exactly one call")

			if tt.wantStatus != models.StatusSuccess {
				assert.Empty(t, result.Items, "only Success may carry items")
			}
			if tt.wantHTTP != 0 {
				require.NotNil(t, result.HTTPStatus)
				assert.Equal(t, tt.wantHTTP, *result.HTTPStatus)
			}
		})
	}
}

func TestDecodeGooglePlaces(t *testing.T) {
	items, err := decodeGooglePlaces([]byte(googleOKBody), testQuery())
	require.NoError(t, err)
	require.Len(t, items, 1)

	place := items[0]
	assert.Equal(t, "abc123", place.ID)
	assert.Equal(t, "Pide Palace", place.Name)
	assert.Equal(t, GooglePlacesName, place.Provider)
	assert.Equal(t, "restaurant", place.Category)
	assert.Equal(t, "ref-1", place.PhotoReference)
	require.NotNil(t, place.Rating)
	assert.InDelta(t, 4.4, *place.Rating, 0.001)
	require.NotNil(t, place.PriceLevel)
	assert.Equal(t, 2, *place.PriceLevel)
}

func TestDecodeOpenTripMap(t *testing.T) {
	body := []byte(`[
		{"xid": "W123", "name": "Maiden's Tower", "kinds": "historic,towers", "rate": 7, "point": {"lon": 29.0041, "lat": 41.0211}},
		{"xid": "W124", "name": "", "point": {"lon": 29.0, "lat": 41.0}},
		{"xid": "W125", "name": "No Point Cafe"},
		{"xid": "W126", "name": "Quiet Pier", "point": {"lon": 29.01, "lat": 41.02}}
	]`)

	items, err := decodeOpenTripMap(body, testQuery())
	require.NoError(t, err)
	require.Len(t, items, 2, "unnamed and point-less features are skipped")

	assert.Equal(t, "Maiden's Tower", items[0].Name)
	assert.Equal(t, "historic", items[0].Category)
	assert.Equal(t, OpenTripMapName, items[0].Provider)

	// The 1..7 popularity rate lands on the 5-point rating scale
	require.NotNil(t, items[0].Rating)
	assert.InDelta(t, 5.0, *items[0].Rating, 0.001)

	// A feature without a rate stays unrated
	assert.Nil(t, items[1].Rating)
}

func TestKeywordToKinds(t *testing.T) {
	assert.Equal(t, "museums,historic", keywordToKinds("museum history"))
	assert.Equal(t, "foods", keywordToKinds("pizza burger"))
	assert.Equal(t, "interesting_places", keywordToKinds(""))
}
