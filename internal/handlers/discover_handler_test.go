package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/models"
)

type stubDiscovery struct {
	result *models.DiscoveryResult
	err    error
}

func (s *stubDiscovery) Discover(ctx context.Context, req *models.SearchRequest) (*models.DiscoveryResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestDiscoverHandler(t *testing.T) {
	svc := &stubDiscovery{result: &models.DiscoveryResult{
		RequestID: "req-1",
		Places:    []models.Place{{ID: "p1", Name: "Pide Palace"}},
		Attempts:  []models.Attempt{{Provider: "googleplaces", Status: models.StatusSuccess, Count: 1}},
		Keyword:   "pizza",
	}}
	h := NewDiscoverHandler(svc, arbor.NewLogger())

	body := `{"latitude":41.02,"longitude":28.97,"radius_meters":5000,"prompt":"pizza"}`
	req := httptest.NewRequest("POST", "/api/discover", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.DiscoverHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var result models.DiscoveryResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, "req-1", result.RequestID)
	assert.Len(t, result.Places, 1)
	assert.Len(t, result.Attempts, 1)
}

func TestDiscoverHandlerRejectsBadMethod(t *testing.T) {
	h := NewDiscoverHandler(&stubDiscovery{}, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/discover", nil)
	w := httptest.NewRecorder()

	h.DiscoverHandler(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestDiscoverHandlerRejectsMalformedBody(t *testing.T) {
	h := NewDiscoverHandler(&stubDiscovery{}, arbor.NewLogger())

	req := httptest.NewRequest("POST", "/api/discover", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	h.DiscoverHandler(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiscoverHandlerMapsValidationError(t *testing.T) {
	svc := &stubDiscovery{err: errors.New("invalid search request: latitude out of range")}
	h := NewDiscoverHandler(svc, arbor.NewLogger())

	body := `{"latitude":212,"longitude":28.97,"radius_meters":5000}`
	req := httptest.NewRequest("POST", "/api/discover", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.DiscoverHandler(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiscoverHandlerMapsCancellation(t *testing.T) {
	svc := &stubDiscovery{err: context.Canceled}
	h := NewDiscoverHandler(svc, arbor.NewLogger())

	body := `{"latitude":41.02,"longitude":28.97,"radius_meters":5000}`
	req := httptest.NewRequest("POST", "/api/discover", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.DiscoverHandler(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
