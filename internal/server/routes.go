package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Discovery
	mux.HandleFunc("/api/discover", s.app.DiscoverHandler.DiscoverHandler) // POST

	// Sponsorship registry
	mux.HandleFunc("/api/sponsorships", s.app.SponsorHandler.RegisterSponsorshipHandler) // POST

	// Operator settings (API keys, sponsorship entries)
	mux.HandleFunc("/api/kv", s.handleKVRoute)       // GET (list), POST (set)
	mux.HandleFunc("/api/kv/", s.handleKVEntryRoute) // DELETE /{key}

	// System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler) // GET
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)    // GET

	return mux
}

// handleKVRoute dispatches /api/kv by method
func (s *Server) handleKVRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.app.KVHandler.ListKVHandler(w, r)
	case http.MethodPost:
		s.app.KVHandler.SetKVHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleKVEntryRoute dispatches /api/kv/{key} by method
func (s *Server) handleKVEntryRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodDelete:
		s.app.KVHandler.DeleteKVHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
