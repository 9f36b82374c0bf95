package cache

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/scour-dev/scour/pkg/log"
)

// Badger stores entries with native TTL expiry. Purge runs value-log GC
// instead of row deletion since Badger drops expired keys itself.
type Badger struct {
	db     *badger.DB
	logger *log.Logger
}

// badgerLoggerAdapter routes badger's internal logging through the cache
// service logger.
type badgerLoggerAdapter struct {
	logger *log.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any)   { bl.logger.Errorf(msg, items...) }
func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) { bl.logger.Warnf(msg, items...) }
func (bl *badgerLoggerAdapter) Infof(msg string, items ...any)    { bl.logger.Debugf(msg, items...) }
func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any)   { bl.logger.Debugf(msg, items...) }

// NewBadger opens (creating if needed) a badger database rooted at dir.
func NewBadger(dir string) (*Badger, error) {
	if dir == "" {
		return nil, fmt.Errorf("badger cache requires a directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	logger := log.ForService("cache")
	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}
	return &Badger{db: db, logger: logger}, nil
}

func (b *Badger) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	return value, true, nil
}

func (b *Badger) Set(key string, value []byte, ttl time.Duration) error {
	err := b.db.Update(func(tx *badger.Txn) error {
		return tx.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (b *Badger) Delete(key string) error {
	err := b.db.Update(func(tx *badger.Txn) error {
		return tx.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Purge reclaims value-log space from entries badger already expired.
// The returned count is always zero: badger does not report how many keys
// its TTL machinery dropped.
func (b *Badger) Purge() (int, error) {
	for {
		err := b.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("running value log gc: %w", err)
		}
	}
}

func (b *Badger) Flush() (int, error) {
	count, err := b.countEntries()
	if err != nil {
		return 0, err
	}
	if err := b.db.DropAll(); err != nil {
		return 0, fmt.Errorf("flushing cache: %w", err)
	}
	return count, nil
}

func (b *Badger) Stats() (Stats, error) {
	entries, err := b.countEntries()
	if err != nil {
		return Stats{}, err
	}
	lsm, vlog := b.db.Size()
	return Stats{Provider: "badger", Entries: entries, SizeBytes: lsm + vlog}, nil
}

func (b *Badger) countEntries() (int, error) {
	count := 0
	err := b.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := tx.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return count, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}
