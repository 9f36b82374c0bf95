package cache

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFactory(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		provider string
	}{
		{"memory", Config{Provider: "memory"}, "memory"},
		{"default is memory", Config{}, "memory"},
		{"sqlite", Config{Provider: "sqlite", Path: filepath.Join(t.TempDir(), "c.db")}, "sqlite"},
		{"badger", Config{Provider: "badger", Path: t.TempDir()}, "badger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New(%+v): %v", tt.cfg, err)
			}
			defer func() { _ = backend.Close() }()

			stats, err := backend.Stats()
			if err != nil {
				t.Fatalf("stats: %v", err)
			}
			if stats.Provider != tt.provider {
				t.Errorf("expected provider %s, got %s", tt.provider, stats.Provider)
			}
		})
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "redis"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "sqlite") {
		t.Errorf("error should list valid providers: %v", err)
	}
}
