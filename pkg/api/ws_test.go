package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scour-dev/scour/pkg/cache"
	"github.com/scour-dev/scour/pkg/events"
	"github.com/scour-dev/scour/pkg/search"
)

func wsDial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u, _ := url.Parse(ts.URL)
	u.Scheme = "ws"
	u.Path = path

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	return msg
}

func TestWebSocketSearch(t *testing.T) {
	_, ts := newTestServer(t, map[string][]byte{
		"s3://bucket/hello": gzipPayload(t, `"hello"`),
	})

	conn := wsDial(t, ts, "/api/search/ws")
	req := SearchRequest{
		Locations: []string{"s3://bucket/hello", "s3://bucket/missing"},
		Term:      "hello",
	}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write request: %v", err)
	}

	// Frames stream in emission order: error for the missing object, then
	// progress, then the closing result.
	var sawError, sawProgress bool
	for {
		msg := readFrame(t, conn)
		switch msg["type"] {
		case "error":
			sawError = true
			if msg["id"] != events.IDArtifactNotAccessible {
				t.Errorf("expected not-accessible id, got %v", msg["id"])
			}
		case "progress":
			sawProgress = true
			if f, ok := msg["fraction"].(float64); !ok || f != 1.0 {
				t.Errorf("expected final fraction 1.0, got %v", msg["fraction"])
			}
		case "result":
			if !sawError || !sawProgress {
				t.Errorf("result arrived before events (error=%v progress=%v)", sawError, sawProgress)
			}
			verdicts, ok := msg["verdicts"].(map[string]any)
			if !ok || len(verdicts) != 2 {
				t.Fatalf("expected 2 verdicts, got %v", msg["verdicts"])
			}
			hit, _ := verdicts["s3://bucket/hello"].(map[string]any)
			if hit["included"] != true || hit["matches"] != true {
				t.Errorf("expected match verdict, got %v", hit)
			}
			return
		default:
			t.Fatalf("unexpected frame type %v", msg["type"])
		}
	}
}

func TestWebSocketSearchMissingTerm(t *testing.T) {
	_, ts := newTestServer(t, nil)

	conn := wsDial(t, ts, "/api/search/ws")
	if err := conn.WriteJSON(SearchRequest{Locations: []string{"s3://b/a"}}); err != nil {
		t.Fatalf("write request: %v", err)
	}
	msg := readFrame(t, conn)
	if msg["error"] == nil {
		t.Fatalf("expected error frame, got %v", msg)
	}
}

func TestWebSocketEventsFeed(t *testing.T) {
	backend, err := cache.New(cache.Config{Provider: "memory"})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = backend.Close() }()

	hub := events.NewHub(16)
	defer hub.Close()

	searcher := search.New(&mapFactory{objects: map[string][]byte{
		"s3://bucket/a": gzipPayload(t, `"x"`),
	}}, nil, backend, search.Options{})
	srv := NewServer(func() *search.Searcher { return searcher }, hub, backend)

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	conn := wsDial(t, ts, "/api/events/ws")

	// Give the handler time to register with the hub before searching.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ListenerCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ListenerCount() == 0 {
		t.Fatal("events listener never registered")
	}

	if resp, _ := postSearch(t, ts, SearchRequest{Locations: []string{"s3://bucket/a"}, Term: "x"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("search failed: %d", resp.StatusCode)
	}

	msg := readFrame(t, conn)
	if msg["type"] != "progress" {
		t.Fatalf("expected progress event on the feed, got %v", msg)
	}
}
