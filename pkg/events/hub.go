package events

import "sync"

// Hub is an in-process fan-out dispatcher. Each registered listener gets
// its own buffered channel; when a listener's buffer is full an incoming
// event is dropped for that listener only, so one slow WebSocket observer
// never backpressures a running search.
//
// The serve daemon owns a single Hub and tees every search's sink into it.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan Event
	nextID    uint64
	bufSize   int
	closed    bool
}

// NewHub constructs a hub with per-listener buffer size.
// If bufSize <= 0, a default of 128 is used.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 128
	}
	return &Hub{
		listeners: make(map[uint64]chan Event),
		bufSize:   bufSize,
	}
}

// Register adds a listener and returns its id and receive channel.
// Callers must Unregister(id) when done to release resources.
func (h *Hub) Register() (uint64, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.bufSize)
	if h.closed {
		close(ch)
		return id, ch
	}
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes a listener and closes its channel. Unknown ids are
// ignored; calling twice is safe.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Broadcast delivers the event to every listener, best effort.
func (h *Hub) Broadcast(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- e:
		default:
			// Drop for slow listener.
		}
	}
}

// Emit makes the hub usable directly as a Sink.
func (h *Hub) Emit(e Event) { h.Broadcast(e) }

// ListenerCount returns the number of active listeners.
func (h *Hub) ListenerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Close unregisters every listener. Subsequent Registers receive a closed
// channel and Broadcasts are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.listeners {
		delete(h.listeners, id)
		close(ch)
	}
}
