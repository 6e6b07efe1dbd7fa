package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/common"
	"github.com/ternarybob/vicinity/internal/interfaces"
)

// StatusHandler handles HTTP requests for application status
type StatusHandler struct {
	costGuard   interfaces.CostGuard
	environment string
	startedAt   time.Time
	logger      arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(costGuard interfaces.CostGuard, environment string, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		costGuard:   costGuard,
		environment: environment,
		startedAt:   time.Now(),
		logger:      logger,
	}
}

// StatusResponse is the payload of GET /api/status.
type StatusResponse struct {
	Version     string                      `json:"version"`
	Environment string                      `json:"environment"`
	Uptime      string                      `json:"uptime"`
	Providers   []interfaces.CostGuardUsage `json:"providers"`
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, StatusResponse{
		Version:     common.GetFullVersion(),
		Environment: h.environment,
		Uptime:      time.Since(h.startedAt).Round(time.Second).String(),
		Providers:   h.costGuard.Snapshot(),
	})
}

// HealthHandler handles GET /api/health
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": common.GetVersion(),
	})
}
