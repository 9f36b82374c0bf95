package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scour-dev/scour/pkg/core"
)

func TestGetOrComputeMissThenHit(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	computes := 0
	compute := func(ctx context.Context) (core.VerdictMap, error) {
		computes++
		return core.VerdictMap{"s3://a": {Included: true, Matches: true}}, nil
	}

	verdicts, cached, err := GetOrCompute(context.Background(), backend, "key", time.Minute, compute)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if cached {
		t.Error("first call should compute")
	}
	if !verdicts["s3://a"].Matches {
		t.Errorf("unexpected verdicts: %v", verdicts)
	}

	verdicts, cached, err = GetOrCompute(context.Background(), backend, "key", time.Minute, compute)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !cached {
		t.Error("second call should hit the cache")
	}
	if computes != 1 {
		t.Errorf("compute should run once, ran %d times", computes)
	}
	if !verdicts["s3://a"].Included {
		t.Errorf("cached verdicts should round-trip: %v", verdicts)
	}
}

func TestGetOrComputeExpiredRecomputes(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	now := time.Now()
	backend.now = func() time.Time { return now }

	computes := 0
	compute := func(ctx context.Context) (core.VerdictMap, error) {
		computes++
		return core.VerdictMap{}, nil
	}

	if _, _, err := GetOrCompute(context.Background(), backend, "key", time.Minute, compute); err != nil {
		t.Fatalf("first call: %v", err)
	}

	backend.now = func() time.Time { return now.Add(2 * time.Minute) }

	if _, cached, err := GetOrCompute(context.Background(), backend, "key", time.Minute, compute); err != nil || cached {
		t.Errorf("expired entry should recompute, got cached=%v err=%v", cached, err)
	}
	if computes != 2 {
		t.Errorf("expected 2 computes, got %d", computes)
	}
}

func TestGetOrComputeErrorSkipsWrite(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	wantErr := errors.New("session open failed")
	_, _, err := GetOrCompute(context.Background(), backend, "key", time.Minute,
		func(ctx context.Context) (core.VerdictMap, error) {
			return nil, wantErr
		})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected compute error, got %v", err)
	}

	if _, ok, _ := backend.Get("key"); ok {
		t.Error("failed compute must not write to the cache")
	}
}

func TestGetOrComputeUnreadableEntryRecomputes(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	if err := backend.Set("key", []byte("not json"), time.Minute); err != nil {
		t.Fatalf("seed: %v", err)
	}

	verdicts, cached, err := GetOrCompute(context.Background(), backend, "key", time.Minute,
		func(ctx context.Context) (core.VerdictMap, error) {
			return core.VerdictMap{"s3://a": {}}, nil
		})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if cached {
		t.Error("unreadable entry should not count as a hit")
	}
	if len(verdicts) != 1 {
		t.Errorf("unexpected verdicts: %v", verdicts)
	}
}
