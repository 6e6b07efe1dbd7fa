package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/models"
	"github.com/ternarybob/vicinity/internal/services/sponsor"
)

// SponsorHandler manages sponsorship registry entries.
type SponsorHandler struct {
	sponsorService *sponsor.Service
	logger         arbor.ILogger
}

// NewSponsorHandler creates a new SponsorHandler
func NewSponsorHandler(sponsorService *sponsor.Service, logger arbor.ILogger) *SponsorHandler {
	return &SponsorHandler{
		sponsorService: sponsorService,
		logger:         logger,
	}
}

// RegisterSponsorshipHandler handles POST /api/sponsorships. The place
// identity must match provider data (name plus coordinates) or the entry
// will never decorate a result.
func (h *SponsorHandler) RegisterSponsorshipHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req struct {
		Name      string    `json:"name"`
		Latitude  float64   `json:"latitude"`
		Longitude float64   `json:"longitude"`
		Until     time.Time `json:"until"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Until.IsZero() || !req.Until.After(time.Now()) {
		WriteError(w, http.StatusBadRequest, "Until must be a future timestamp")
		return
	}

	place := models.Place{
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.sponsorService.Register(r.Context(), &place, req.Until); err != nil {
		h.logger.Error().Err(err).Str("name", req.Name).Msg("Failed to register sponsorship")
		WriteError(w, http.StatusInternalServerError, "Failed to register sponsorship")
		return
	}

	h.logger.Info().
		Str("name", req.Name).
		Str("until", req.Until.Format(time.RFC3339)).
		Msg("Sponsorship registered")

	WriteJSON(w, http.StatusCreated, map[string]string{
		"status": "success",
		"key":    place.DedupKey(),
	})
}
