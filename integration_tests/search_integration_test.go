package integration_tests

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/scour-dev/scour/pkg/cache"
	"github.com/scour-dev/scour/pkg/events"
	"github.com/scour-dev/scour/pkg/objstore"
	_ "github.com/scour-dev/scour/pkg/objstore/file"
	"github.com/scour-dev/scour/pkg/search"
)

// writeObject stores a gzip+JSON artifact under the file provider's root,
// mirroring the s3://bucket/key layout.
func writeObject(t *testing.T, root, location, payload string) {
	t.Helper()

	rel := location[len("s3://"):]
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFileStoreSQLiteCacheEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeObject(t, root, "s3://bucket/match", `"needle"`)
	writeObject(t, root, "s3://bucket/other", `"haystack"`)

	factory, err := objstore.Open("file", objstore.Config{Root: root, Scheme: "s3://"})
	if err != nil {
		t.Fatalf("opening file store: %v", err)
	}

	backend, err := cache.New(cache.Config{
		Provider: "sqlite",
		Path:     filepath.Join(t.TempDir(), "cache.db"),
	})
	if err != nil {
		t.Fatalf("opening sqlite cache: %v", err)
	}
	defer func() { _ = backend.Close() }()

	searcher := search.New(factory, nil, backend, search.Options{})
	ctx := context.Background()
	locations := []string{
		"s3://bucket/match",
		"s3://bucket/other",
		"s3://bucket/missing",
		"https://elsewhere/doc",
	}

	var collector events.Collector
	verdicts, cached, err := searcher.SearchDetail(ctx, locations, "needle", &collector)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if cached {
		t.Error("first search must not be cached")
	}
	if len(verdicts) != 4 {
		t.Fatalf("expected 4 verdicts, got %d: %v", len(verdicts), verdicts)
	}
	if v := verdicts["s3://bucket/match"]; !v.Included || !v.Matches {
		t.Errorf("expected match, got %+v", v)
	}
	if v := verdicts["s3://bucket/other"]; !v.Included || v.Matches {
		t.Errorf("expected included non-match, got %+v", v)
	}
	for _, loc := range []string{"s3://bucket/missing", "https://elsewhere/doc"} {
		if v := verdicts[loc]; v.Included || v.Matches {
			t.Errorf("%s: expected excluded verdict, got %+v", loc, v)
		}
	}

	// One not-accessible event each for the missing object and the foreign
	// URI, plus a single progress event for the single batch.
	errs := collector.Errors()
	if len(errs) != 2 {
		t.Errorf("expected 2 error events, got %v", errs)
	}
	var progress int
	for _, e := range collector.Events() {
		if pe, ok := e.(events.ProgressEvent); ok {
			progress++
			if pe.Fraction != 1.0 {
				t.Errorf("expected fraction 1.0, got %v", pe.Fraction)
			}
		}
	}
	if progress != 1 {
		t.Errorf("expected 1 progress event, got %d", progress)
	}

	// Remove the backing objects entirely. A cache hit must still return
	// the same verdicts without touching the store.
	if err := os.RemoveAll(filepath.Join(root, "bucket")); err != nil {
		t.Fatal(err)
	}

	second, cached, err := searcher.SearchDetail(ctx, locations, "needle", nil)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if !cached {
		t.Error("second identical search should hit the cache")
	}
	for loc, v := range verdicts {
		if second[loc] != v {
			t.Errorf("%s: cached verdict %+v differs from original %+v", loc, second[loc], v)
		}
	}
}

func TestSQLiteCacheSurvivesReopen(t *testing.T) {
	root := t.TempDir()
	writeObject(t, root, "s3://bucket/a", `"x"`)

	factory, err := objstore.Open("file", objstore.Config{Root: root, Scheme: "s3://"})
	if err != nil {
		t.Fatal(err)
	}

	cachePath := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	backend, err := cache.New(cache.Config{Provider: "sqlite", Path: cachePath})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := search.New(factory, nil, backend, search.Options{}).
		SearchDetail(ctx, []string{"s3://bucket/a"}, "x", nil); err != nil {
		t.Fatal(err)
	}
	if err := backend.Close(); err != nil {
		t.Fatal(err)
	}

	// A fresh process reopening the same database sees the cached result.
	backend, err = cache.New(cache.Config{Provider: "sqlite", Path: cachePath})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = backend.Close() }()

	verdicts, cached, err := search.New(factory, nil, backend, search.Options{}).
		SearchDetail(ctx, []string{"s3://bucket/a"}, "x", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !cached {
		t.Error("expected cache hit after reopen")
	}
	if v := verdicts["s3://bucket/a"]; !v.Included || !v.Matches {
		t.Errorf("unexpected cached verdict %+v", v)
	}
}
