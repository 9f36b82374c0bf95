// Package cache provides the TTL result cache behind the search
// orchestrator: a Backend interface with sqlite, badger and in-memory
// implementations, deterministic search-key derivation, and the
// GetOrCompute memoization wrapper.
package cache

import (
	"errors"
	"fmt"
	"time"
)

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("cache backend is closed")

// Stats summarizes a backend's contents for the admin surface.
type Stats struct {
	Provider  string `json:"provider"`
	Entries   int    `json:"entries"`
	SizeBytes int64  `json:"size_bytes"`
}

// Backend is keyed storage with TTL expiry. Implementations are safe for
// concurrent use; none provides single-flight de-duplication of concurrent
// identical computations (an accepted property of this design - both
// callers compute and the last write wins).
type Backend interface {
	// Get returns the stored value, or ok=false on a miss. Expired
	// entries are misses; sqlite and memory delete them lazily here,
	// badger expires them natively.
	Get(key string) (value []byte, ok bool, err error)
	// Set stores the value under key for ttl.
	Set(key string, value []byte, ttl time.Duration) error
	// Delete removes one entry; deleting a missing key is not an error.
	Delete(key string) error
	// Purge drops expired entries and returns how many were removed.
	Purge() (int, error)
	// Flush drops all entries and returns how many were removed.
	Flush() (int, error)
	Stats() (Stats, error)
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Provider is one of "sqlite", "badger" or "memory".
	Provider string
	// Path is the database file (sqlite) or directory (badger).
	// Unused by the memory backend.
	Path string
}

// New builds the configured backend.
func New(cfg Config) (Backend, error) {
	switch cfg.Provider {
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "badger":
		return NewBadger(cfg.Path)
	case "memory", "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown cache provider %q (valid: sqlite, badger, memory)", cfg.Provider)
	}
}
