package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/scour-dev/scour/pkg/cache"
	"github.com/scour-dev/scour/pkg/config"
	"github.com/scour-dev/scour/pkg/decode"
	"github.com/scour-dev/scour/pkg/objstore"
	"github.com/scour-dev/scour/pkg/search"
)

// openStore builds the configured object store factory
func openStore(cfg *config.Config) (objstore.Factory, error) {
	factory, err := objstore.Open(cfg.Store.Provider, objstore.Config{
		Endpoint:      cfg.Store.Endpoint,
		Token:         cfg.Store.Token,
		Root:          cfg.Store.Root,
		Scheme:        cfg.Store.Scheme,
		Timeout:       cfg.Store.Timeout.Duration,
		MaxObjectSize: cfg.Store.MaxObjectSize,
	})
	if err != nil {
		return nil, fmt.Errorf("opening object store: %w", err)
	}
	return factory, nil
}

// openCache builds the configured result cache backend
func openCache(cfg *config.Config) (cache.Backend, error) {
	backend, err := cache.New(cache.Config{
		Provider: cfg.Cache.Provider,
		Path:     cfg.Cache.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return backend, nil
}

// newSearcher wires a searcher from config plus already-opened dependencies
func newSearcher(cfg *config.Config, factory objstore.Factory, backend cache.Backend) *search.Searcher {
	decoder := decode.NewDecoder(cfg.Search.MaxArtifactSize)
	return search.New(factory, decoder, backend, search.Options{
		BatchSize: cfg.Search.BatchSize,
		TTL:       cfg.Search.CacheTTL.Duration,
		Scheme:    cfg.Store.Scheme,
	})
}

// readLocations merges positional arguments with an optional locations file
// (one location per line, blank lines and #-comments skipped).
func readLocations(path string, args []string) ([]string, error) {
	locations := append([]string{}, args...)
	if path == "" {
		return locations, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening locations file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		locations = append(locations, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading locations file: %w", err)
	}
	return locations, nil
}
