package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// API routes with method-specific routing
	mux.HandleFunc("POST /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/search/ws", s.HandleSearchWS)
	mux.HandleFunc("GET /api/events/ws", s.HandleEventsWS)
	mux.HandleFunc("GET /api/cache/stats", s.HandleCacheStats)
	mux.HandleFunc("DELETE /api/cache", s.HandleCacheClear)
	mux.HandleFunc("GET /api/version", s.HandleVersion)
	mux.HandleFunc("GET /health", s.HandleHealth)
}
