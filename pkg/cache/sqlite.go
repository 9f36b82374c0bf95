package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/scour-dev/scour/pkg/db"
	"github.com/scour-dev/scour/pkg/log"
)

// SQLite stores entries in a single results table with integer unix
// expiry timestamps. Expired rows are deleted lazily on read and in bulk
// by Purge. Schema comes from the embedded migrations in pkg/db.
type SQLite struct {
	db     *sql.DB
	logger *log.Logger

	getStmt    *sql.Stmt
	setStmt    *sql.Stmt
	deleteStmt *sql.Stmt
}

// NewSQLite opens (creating if needed) the cache database at path and
// applies pending schema migrations.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite cache requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	sqldb, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
	}
	for _, pragma := range pragmas {
		if _, err := sqldb.Exec(pragma); err != nil {
			_ = sqldb.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	if err := db.ApplyPendingMigrations(sqldb); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("migrating cache schema: %w", err)
	}

	s := &SQLite{db: sqldb, logger: log.ForService("cache")}
	if err := s.prepare(); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) prepare() error {
	var err error
	if s.getStmt, err = s.db.Prepare("SELECT value, expires_at FROM results WHERE key = ?"); err != nil {
		return fmt.Errorf("preparing get statement: %w", err)
	}
	if s.setStmt, err = s.db.Prepare("INSERT OR REPLACE INTO results (key, value, expires_at) VALUES (?, ?, ?)"); err != nil {
		return fmt.Errorf("preparing set statement: %w", err)
	}
	if s.deleteStmt, err = s.db.Prepare("DELETE FROM results WHERE key = ?"); err != nil {
		return fmt.Errorf("preparing delete statement: %w", err)
	}
	return nil
}

func (s *SQLite) Get(key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt int64
	err := s.getStmt.QueryRow(key).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	if time.Now().Unix() >= expiresAt {
		if _, err := s.deleteStmt.Exec(key); err != nil {
			s.logger.Warnf("deleting expired entry %s: %v", key, err)
		}
		return nil, false, nil
	}
	return value, true, nil
}

func (s *SQLite) Set(key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).Unix()
	if _, err := s.setStmt.Exec(key, value, expiresAt); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (s *SQLite) Delete(key string) error {
	if _, err := s.deleteStmt.Exec(key); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

func (s *SQLite) Purge() (int, error) {
	res, err := s.db.Exec("DELETE FROM results WHERE expires_at <= ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purging expired entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged entries: %w", err)
	}
	return int(n), nil
}

func (s *SQLite) Flush() (int, error) {
	res, err := s.db.Exec("DELETE FROM results")
	if err != nil {
		return 0, fmt.Errorf("flushing cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting flushed entries: %w", err)
	}
	return int(n), nil
}

func (s *SQLite) Stats() (Stats, error) {
	var entries int
	var size sql.NullInt64
	err := s.db.QueryRow("SELECT COUNT(*), COALESCE(SUM(LENGTH(value)), 0) FROM results").Scan(&entries, &size)
	if err != nil {
		return Stats{}, fmt.Errorf("reading cache stats: %w", err)
	}
	return Stats{Provider: "sqlite", Entries: entries, SizeBytes: size.Int64}, nil
}

// Vacuum reclaims space after large purges; surfaced by "scour cache vacuum".
func (s *SQLite) Vacuum() error {
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("vacuuming cache database: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for migration status tooling.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

func (s *SQLite) Close() error {
	for _, stmt := range []*sql.Stmt{s.getStmt, s.setStmt, s.deleteStmt} {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				s.logger.Warnf("closing prepared statement: %v", err)
			}
		}
	}
	return s.db.Close()
}
