package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/scour-dev/scour/pkg/decode"
	"github.com/scour-dev/scour/pkg/search"
)

//go:embed config.toml.sample
var configTemplate string

// EnvCacheTTL overrides the configured search cache TTL with a value in
// seconds.
const EnvCacheTTL = "SCOUR_SEARCH_CACHE_TTL_SECONDS"

type Config struct {
	StorageDir string       `toml:"storage_dir"`
	Store      StoreConfig  `toml:"store"`
	Search     SearchConfig `toml:"search"`
	Cache      CacheConfig  `toml:"cache"`
	Serve      ServeConfig  `toml:"serve"`
	Events     EventsConfig `toml:"events"`
}

// StoreConfig selects and configures the object store provider.
type StoreConfig struct {
	Provider string `toml:"provider"`
	// Endpoint is the base URL of the S3-compatible gateway (http provider).
	Endpoint string `toml:"endpoint,omitempty"`
	// Token is an optional bearer token for the http provider.
	Token string `toml:"token,omitempty"`
	// Root is the directory backing the file provider.
	Root          string   `toml:"root,omitempty"`
	Scheme        string   `toml:"scheme"`
	Timeout       Duration `toml:"timeout"`
	MaxObjectSize int      `toml:"max_object_size"`
}

type SearchConfig struct {
	BatchSize int `toml:"batch_size"`
	// MaxArtifactSize bounds decoded artifact payloads, in bytes.
	MaxArtifactSize int      `toml:"max_artifact_size"`
	CacheTTL        Duration `toml:"cache_ttl"`
}

type CacheConfig struct {
	Provider string `toml:"provider"`
	Path     string `toml:"path,omitempty"`
}

type ServeConfig struct {
	Listen string `toml:"listen"`
}

type EventsConfig struct {
	// Socket is the unix socket path the serve daemon streams events on.
	// Empty disables the bridge.
	Socket string `toml:"socket,omitempty"`
	Buffer int    `toml:"buffer"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	cfg := &Config{StorageDir: storageDir}
	cfg.applyDefaults()
	return cfg, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg, err := GetDefaultConfig()
		if err != nil {
			return nil, err
		}
		return cfg, cfg.applyEnv()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		config.StorageDir = storageDir
	}
	config.applyDefaults()

	return &config, config.applyEnv()
}

func (c *Config) applyDefaults() {
	if c.Store.Provider == "" {
		c.Store.Provider = "http"
	}
	if c.Store.Scheme == "" {
		c.Store.Scheme = "s3://"
	}
	if c.Store.Timeout.Duration == 0 {
		c.Store.Timeout = Duration{30 * time.Second}
	}
	if c.Search.BatchSize == 0 {
		c.Search.BatchSize = search.DefaultBatchSize
	}
	if c.Search.MaxArtifactSize == 0 {
		c.Search.MaxArtifactSize = decode.DefaultMaxSize
	}
	if c.Search.CacheTTL.Duration == 0 {
		c.Search.CacheTTL = Duration{search.DefaultTTL}
	}
	if c.Cache.Provider == "" {
		c.Cache.Provider = "sqlite"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = filepath.Join(c.StorageDir, "cache.db")
	}
	if c.Serve.Listen == "" {
		c.Serve.Listen = ":8787"
	}
	if c.Events.Buffer == 0 {
		c.Events.Buffer = 128
	}
}

// applyEnv folds supported environment overrides into the config.
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvCacheTTL); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return fmt.Errorf("invalid %s value %q", EnvCacheTTL, v)
		}
		c.Search.CacheTTL = Duration{time.Duration(seconds) * time.Second}
	}
	return nil
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	storageDir := c.StorageDir
	if storageDir == "" {
		var err error
		storageDir, err = GetDefaultStorageDir()
		if err != nil {
			return "", fmt.Errorf("getting default storage directory: %w", err)
		}
	}

	// Replace the placeholder storage_dir with the actual path
	template := strings.Replace(configTemplate, "/home/user/.local/share/scour", storageDir, 1)
	return template, nil
}

// GetDefaultStorageDir returns the default storage directory for databases
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	scourDir := filepath.Join(dataDir, "scour")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(scourDir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", scourDir, err)
	}

	return scourDir, nil
}

// GetDefaultCachePath returns the default cache database path in the user's
// data directory
func GetDefaultCachePath() (string, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(storageDir, "cache.db"), nil
}

// GetConfigDir returns the configuration directory for scour
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	scourConfigDir := filepath.Join(configDir, "scour")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(scourConfigDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", scourConfigDir, err)
	}

	return scourConfigDir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
