package api

import (
	"time"

	"github.com/scour-dev/scour/pkg/core"
	"github.com/scour-dev/scour/pkg/events"
)

// SearchRequest is the POST /api/search and WebSocket search payload.
type SearchRequest struct {
	Locations []string `json:"locations"`
	Term      string   `json:"term"`
}

// SearchResponse carries one verdict per distinct non-empty location plus
// the events the search emitted along the way.
type SearchResponse struct {
	Term     string              `json:"term"`
	Verdicts core.VerdictMap     `json:"verdicts"`
	Count    int                 `json:"count"`
	Cached   bool                `json:"cached"`
	Events   []events.ErrorEvent `json:"events,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

type VersionResponse struct {
	Version string `json:"version"`
}

type CacheClearResponse struct {
	Removed     int64 `json:"removed"`
	ExpiredOnly bool  `json:"expired_only"`
}

// wsResult is the closing frame of a WebSocket search, sent after every
// progress and error event has been streamed.
type wsResult struct {
	Type     string          `json:"type"`
	Verdicts core.VerdictMap `json:"verdicts"`
	Count    int             `json:"count"`
	Cached   bool            `json:"cached"`
}
