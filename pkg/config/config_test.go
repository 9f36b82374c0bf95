package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Store.Provider != "http" {
		t.Errorf("expected http provider, got %s", cfg.Store.Provider)
	}
	if cfg.Store.Scheme != "s3://" {
		t.Errorf("expected s3:// scheme, got %s", cfg.Store.Scheme)
	}
	if cfg.Search.BatchSize != 512 {
		t.Errorf("expected batch size 512, got %d", cfg.Search.BatchSize)
	}
	if cfg.Search.CacheTTL.Duration != 24*time.Hour {
		t.Errorf("expected 24h TTL, got %s", cfg.Search.CacheTTL)
	}
	if cfg.Cache.Provider != "sqlite" {
		t.Errorf("expected sqlite cache, got %s", cfg.Cache.Provider)
	}
	if cfg.Cache.Path == "" {
		t.Error("expected a default cache path")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
storage_dir = '` + t.TempDir() + `'

[store]
provider = 'file'
root = '/srv/objects'
timeout = '5s'

[search]
batch_size = 64
cache_ttl = '10m'

[cache]
provider = 'memory'
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Provider != "file" || cfg.Store.Root != "/srv/objects" {
		t.Errorf("store config not loaded: %+v", cfg.Store)
	}
	if cfg.Store.Timeout.Duration != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.Store.Timeout)
	}
	if cfg.Search.BatchSize != 64 {
		t.Errorf("expected batch size 64, got %d", cfg.Search.BatchSize)
	}
	if cfg.Search.CacheTTL.Duration != 10*time.Minute {
		t.Errorf("expected 10m TTL, got %s", cfg.Search.CacheTTL)
	}
	if cfg.Cache.Provider != "memory" {
		t.Errorf("expected memory cache, got %s", cfg.Cache.Provider)
	}
	// Unset fields still get defaults.
	if cfg.Serve.Listen != ":8787" {
		t.Errorf("expected default listen address, got %s", cfg.Serve.Listen)
	}
}

func TestCacheTTLEnvOverride(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv(EnvCacheTTL, "3600")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.CacheTTL.Duration != time.Hour {
		t.Errorf("expected 1h TTL from env, got %s", cfg.Search.CacheTTL)
	}
}

func TestCacheTTLEnvOverrideInvalid(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv(EnvCacheTTL, "soon")

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml")); err == nil {
		t.Fatal("expected error for non-numeric TTL override")
	}
}

func TestSaveTemplateConfig(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := GetDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := cfg.SaveTemplateConfig(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("template does not round-trip: %v\n%s", err, data)
	}
	if loaded.StorageDir != cfg.StorageDir {
		t.Errorf("template storage_dir %s, want %s", loaded.StorageDir, cfg.StorageDir)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := GetDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Store.Provider = "file"
	cfg.Store.Root = "/srv/objects"
	cfg.Search.BatchSize = 128

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Store.Provider != "file" || loaded.Store.Root != "/srv/objects" {
		t.Errorf("store config lost in round trip: %+v", loaded.Store)
	}
	if loaded.Search.BatchSize != 128 {
		t.Errorf("batch size lost in round trip: %d", loaded.Search.BatchSize)
	}
}
