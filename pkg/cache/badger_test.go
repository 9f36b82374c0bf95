package cache

import (
	"testing"
	"time"
)

func newTestBadger(t *testing.T) *Badger {
	t.Helper()
	b, err := NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("opening badger cache: %v", err)
	}
	t.Cleanup(func() {
		if err := b.Close(); err != nil {
			t.Errorf("closing badger cache: %v", err)
		}
	})
	return b
}

func TestBadgerRoundTrip(t *testing.T) {
	b := newTestBadger(t)

	if err := b.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, ok, err := b.Get("k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || string(value) != "v" {
		t.Errorf("expected hit, got ok=%v value=%q", ok, value)
	}

	if _, ok, _ := b.Get("missing"); ok {
		t.Error("missing key should miss")
	}

	if err := b.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := b.Get("k"); ok {
		t.Error("deleted key should miss")
	}
}

func TestBadgerNativeExpiry(t *testing.T) {
	b := newTestBadger(t)

	if err := b.Set("k", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok, _ := b.Get("k"); ok {
		t.Error("entry past its TTL should miss")
	}
}

func TestBadgerFlushAndStats(t *testing.T) {
	b := newTestBadger(t)

	_ = b.Set("a", []byte("v"), time.Hour)
	_ = b.Set("b", []byte("v"), time.Hour)

	stats, err := b.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Entries != 2 || stats.Provider != "badger" {
		t.Errorf("unexpected stats: %+v", stats)
	}

	dropped, err := b.Flush()
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if dropped != 2 {
		t.Errorf("expected 2 flushed entries, got %d", dropped)
	}
}
