package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/scour-dev/scour/pkg/cache"
	"github.com/scour-dev/scour/pkg/events"
	"github.com/scour-dev/scour/pkg/log"
	"github.com/scour-dev/scour/pkg/search"
)

// SearcherProvider hands out the current searcher. The serve daemon swaps
// the searcher on config reload, so handlers resolve it per request.
type SearcherProvider func() *search.Searcher

type Server struct {
	searcher SearcherProvider
	hub      *events.Hub
	backend  cache.Backend
	logger   *log.Logger
}

// NewServer builds the API server. hub may be nil when no observers are
// expected; backend may be nil when caching is disabled, which turns the
// cache endpoints into 404s.
func NewServer(searcher SearcherProvider, hub *events.Hub, backend cache.Backend) *Server {
	return &Server{
		searcher: searcher,
		hub:      hub,
		backend:  backend,
		logger:   log.ForService("api"),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequestIDMiddleware tags each request with a uuid and logs it.
func RequestIDMiddleware(next http.Handler) http.Handler {
	logger := log.ForService("api")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		logger.Debugf("%s %s request_id=%s", r.Method, r.URL.Path, id)
		next.ServeHTTP(w, r)
	})
}
