package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scour-dev/scour/pkg/core"
	"github.com/scour-dev/scour/pkg/events"
)

const (
	wsWriteDeadline = 2 * time.Second
	wsPingInterval  = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleSearchWS runs one search per connection: the client sends a single
// SearchRequest frame, every progress and error event streams back as its
// own frame, and a final "result" frame closes the exchange.
func (s *Server) HandleSearchWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	var req SearchRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.logger.Debugf("reading search request frame: %v", err)
		return
	}
	if req.Term == "" {
		_ = conn.WriteJSON(ErrorResponse{Error: "Missing search term", Message: "Field 'term' is required"})
		return
	}

	sink := events.NewChannelSink(256)
	streamed := events.Sink(sink)
	if s.hub != nil {
		streamed = events.Tee(sink, s.hub)
	}

	type outcome struct {
		verdicts core.VerdictMap
		cached   bool
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		verdicts, cached, err := s.searcher().SearchDetail(r.Context(), req.Locations, req.Term, streamed)
		sink.Close()
		done <- outcome{verdicts, cached, err}
	}()

	writeFailed := false
	for e := range sink.Events() {
		if writeFailed {
			continue // keep draining so the search goroutine can finish
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
		if err := conn.WriteJSON(e); err != nil {
			s.logger.Debugf("streaming event: %v", err)
			writeFailed = true
		}
	}

	result := <-done
	if writeFailed {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
	if result.err != nil {
		_ = conn.WriteJSON(ErrorResponse{Error: "Store session failed", Message: result.err.Error()})
		return
	}
	_ = conn.WriteJSON(wsResult{
		Type:     "result",
		Verdicts: result.verdicts,
		Count:    len(result.verdicts),
		Cached:   result.cached,
	})
}

// HandleEventsWS streams every event the daemon's hub sees, across all
// searches, until the client disconnects.
func (s *Server) HandleEventsWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		s.writeError(w, http.StatusNotFound, "Events disabled", "No event hub is configured")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	id, ch := s.hub.Register()
	defer s.hub.Unregister(id)

	closed := make(chan struct{})
	go func() {
		// Discard client frames; a read error means the peer went away.
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
