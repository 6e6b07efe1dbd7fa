package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/interfaces"
	"github.com/ternarybob/vicinity/internal/models"
)

// DiscoverHandler handles HTTP requests for place discovery
type DiscoverHandler struct {
	discoveryService interfaces.DiscoveryService
	logger           arbor.ILogger
}

// NewDiscoverHandler creates a new DiscoverHandler
func NewDiscoverHandler(discoveryService interfaces.DiscoveryService, logger arbor.ILogger) *DiscoverHandler {
	return &DiscoverHandler{
		discoveryService: discoveryService,
		logger:           logger,
	}
}

// DiscoverHandler handles POST /api/discover
func (h *DiscoverHandler) DiscoverHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse discover request body")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.discoveryService.Discover(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.logger.Warn().Err(err).Msg("Discover request aborted")
			WriteError(w, http.StatusServiceUnavailable, "Request aborted")
		case strings.Contains(err.Error(), "invalid search request"):
			WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("Discover request failed")
			WriteError(w, http.StatusInternalServerError, "Discovery failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
