package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/scour-dev/scour/pkg/events"
	"github.com/scour-dev/scour/pkg/version"
)

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Term == "" {
		s.writeError(w, http.StatusBadRequest, "Missing search term", "Field 'term' is required")
		return
	}

	var collector events.Collector
	sink := events.Sink(&collector)
	if s.hub != nil {
		sink = events.Tee(&collector, s.hub)
	}

	verdicts, cached, err := s.searcher().SearchDetail(r.Context(), req.Locations, req.Term, sink)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// The only hard failure is being unable to open a store session.
		s.writeError(w, http.StatusBadGateway, "Store session failed", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, SearchResponse{
		Term:     req.Term,
		Verdicts: verdicts,
		Count:    len(verdicts),
		Cached:   cached,
		Events:   collector.Errors(),
	})
}

func (s *Server) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.backend == nil {
		s.writeError(w, http.StatusNotFound, "Cache disabled", "No cache backend is configured")
		return
	}

	stats, err := s.backend.Stats()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to get stats", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) HandleCacheClear(w http.ResponseWriter, r *http.Request) {
	if s.backend == nil {
		s.writeError(w, http.StatusNotFound, "Cache disabled", "No cache backend is configured")
		return
	}

	expiredOnly := r.URL.Query().Get("expired") == "true"
	var (
		removed int
		err     error
	)
	if expiredOnly {
		removed, err = s.backend.Purge()
	} else {
		removed, err = s.backend.Flush()
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to clear cache", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, CacheClearResponse{
		Removed:     int64(removed),
		ExpiredOnly: expiredOnly,
	})
}

func (s *Server) HandleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, VersionResponse{Version: version.APIVersion()})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}
