package events

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"
)

func TestBridgeBroadcastsFrames(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "bridge.sock")

	b := NewBridge(socketPath)
	if err := b.Start(); err != nil {
		t.Fatalf("start bridge: %v", err)
	}
	defer b.Stop()

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("dial bridge: %v", err)
	}
	defer func() { _ = conn.Close() }()

	// Wait for the accept loop to pick the connection up.
	deadline := time.Now().Add(2 * time.Second)
	for b.ConsumerCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("bridge never registered the consumer")
		}
		time.Sleep(10 * time.Millisecond)
	}

	b.Emit(Error("artifact is not accessible", IDArtifactNotAccessible))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}

	var frame map[string]any
	if err := json.Unmarshal(line, &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if frame["type"] != "error" || frame["id"] != IDArtifactNotAccessible {
		t.Errorf("unexpected frame: %v", frame)
	}
}

func TestBridgeEmptyPath(t *testing.T) {
	b := NewBridge("")
	if err := b.Start(); err == nil {
		t.Fatal("expected error starting bridge with empty path")
	}

	// Emit before a successful start must be a quiet no-op.
	b.Emit(Progress(1.0))
}

func TestBridgeStopRemovesSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "bridge.sock")

	b := NewBridge(socketPath)
	if err := b.Start(); err != nil {
		t.Fatalf("start bridge: %v", err)
	}
	b.Stop()
	b.Stop() // idempotent

	if _, err := net.Dial("unix", socketPath); err == nil {
		t.Error("socket should be gone after stop")
	}
}
