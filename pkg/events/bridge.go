package events

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/scour-dev/scour/pkg/log"
)

const (
	bridgeHeartbeatInterval = 30 * time.Second
	bridgeWriteDeadline     = 2 * time.Second
)

// Bridge fans search events out to other local processes over a Unix
// domain socket. It is one-way: bridge -> consumers.
//
// Protocol: newline delimited JSON, one object per line.
//   - {"type":"progress","fraction":0.5}
//   - {"type":"error","message":"...","id":"..."}
//   - {"type":"heartbeat","ts":"RFC3339Nano"}
//
// Writes are best effort with a short deadline; a stalled or dead consumer
// is closed and removed rather than blocking a running search. Inbound
// data from clients is drained and ignored. No durability or replay:
// consumers only see events emitted while connected.
type Bridge struct {
	path      string
	ln        net.Listener
	mu        sync.RWMutex
	conns     map[net.Conn]struct{}
	stopCh    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	running   bool
	logger    *log.Logger
}

// NewBridge constructs (but does not start) a bridge. An empty path
// disables it.
func NewBridge(path string) *Bridge {
	return &Bridge{
		path:   path,
		conns:  make(map[net.Conn]struct{}),
		stopCh: make(chan struct{}),
		logger: log.ForService("bridge"),
	}
}

// Start listens on the socket and begins accepting consumers. A stale
// socket file from a previous run is removed first. Safe to call multiple
// times; subsequent calls are ignored.
func (b *Bridge) Start() error {
	var err error
	b.startOnce.Do(func() {
		if b.path == "" {
			err = errors.New("bridge socket path is empty")
			return
		}

		if st, statErr := os.Stat(b.path); statErr == nil && !st.IsDir() {
			_ = os.Remove(b.path)
		}

		ln, listenErr := net.Listen("unix", b.path)
		if listenErr != nil {
			err = fmt.Errorf("listen on unix socket %s: %w", b.path, listenErr)
			return
		}
		_ = os.Chmod(b.path, 0660)

		b.ln = ln
		b.running = true
		b.logger.Infof("event bridge listening on %s", b.path)

		go b.acceptLoop()
		go b.heartbeatLoop()
	})
	return err
}

func (b *Bridge) acceptLoop() {
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			select {
			case <-b.stopCh:
				return
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			// Listener closed.
			return
		}

		b.mu.Lock()
		b.conns[conn] = struct{}{}
		b.mu.Unlock()
		b.logger.Debugf("consumer connected (%d total)", b.ConsumerCount())

		go b.drain(conn)
	}
}

// drain consumes and discards inbound data until the client goes away.
func (b *Bridge) drain(c net.Conn) {
	sc := bufio.NewScanner(c)
	for sc.Scan() {
		// One-way protocol; ignore inbound lines.
	}
	b.mu.Lock()
	delete(b.conns, c)
	b.mu.Unlock()
	_ = c.Close()
}

func (b *Bridge) heartbeatLoop() {
	ticker := time.NewTicker(bridgeHeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-b.stopCh:
			return
		case now := <-ticker.C:
			b.broadcast(map[string]any{
				"type": "heartbeat",
				"ts":   now.UTC().Format(time.RFC3339Nano),
			})
		}
	}
}

// Emit makes the bridge usable as a Sink; a hub listener typically feeds it.
func (b *Bridge) Emit(e Event) {
	if !b.running {
		return
	}
	b.broadcast(e)
}

// broadcast marshals v, appends a newline, and writes to every consumer.
// Failing connections are closed and removed.
func (b *Bridge) broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		b.logger.Errorf("marshaling event frame: %v", err)
		return
	}
	data = append(data, '\n')

	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.conns {
		_ = c.SetWriteDeadline(time.Now().Add(bridgeWriteDeadline))
		if _, werr := c.Write(data); werr != nil {
			_ = c.Close()
			delete(b.conns, c)
		} else {
			_ = c.SetWriteDeadline(time.Time{})
		}
	}
}

// ConsumerCount returns the number of connected consumers.
func (b *Bridge) ConsumerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.conns)
}

// Stop closes the listener and all consumer connections and removes the
// socket file. Safe to call multiple times.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)

		if b.ln != nil {
			_ = b.ln.Close()
		}

		b.mu.Lock()
		for c := range b.conns {
			_ = c.Close()
		}
		b.conns = make(map[net.Conn]struct{})
		b.mu.Unlock()

		if b.path != "" {
			_ = os.Remove(b.path)
		}
		b.running = false
	})
}
