package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/domainsuffixes/internal/logging"
)

// BadgerStore keeps snapshots in an embedded badger database.
type BadgerStore struct {
	db      *badger.DB
	metrics Metrics
	config  BadgerConfig
	stopGC  chan struct{}
}

// BadgerConfig tunes the badger database
type BadgerConfig struct {
	Path             string
	InMemory         bool
	MaxMemoryMB      int
	ValueLogMaxMB    int
	CompactL0OnClose bool
	GCInterval       time.Duration
	GCDiscardRatio   float64
}

// NewBadgerStore opens (or creates) the database at config.Path.
func NewBadgerStore(config BadgerConfig) (*BadgerStore, error) {
	if config.GCInterval == 0 {
		config.GCInterval = 10 * time.Minute
	}
	if config.GCDiscardRatio == 0 {
		config.GCDiscardRatio = 0.5
	}

	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if config.Path == "" {
			return nil, fmt.Errorf("badger path is required")
		}
		opts = badger.DefaultOptions(config.Path)
	}

	if config.MaxMemoryMB > 0 {
		opts = opts.WithMemTableSize(int64(config.MaxMemoryMB) << 20)
	}
	if config.ValueLogMaxMB > 0 {
		opts = opts.WithValueLogFileSize(int64(config.ValueLogMaxMB) << 20)
	}
	opts = opts.WithCompactL0OnClose(config.CompactL0OnClose)
	opts = opts.WithNumVersionsToKeep(1)
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &BadgerStore{
		db:     db,
		config: config,
		stopGC: make(chan struct{}),
	}
	if !config.InMemory {
		go s.runGC()
	}
	return s, nil
}

// Get returns the value for key or ErrNotFound.
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		if item.IsDeletedOrExpired() {
			return badger.ErrKeyNotFound
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		atomic.AddUint64(&s.metrics.Misses, 1)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	atomic.AddUint64(&s.metrics.Hits, 1)
	return value, nil
}

// Put stores value under key. A positive ttl lets badger expire the entry.
func (s *BadgerStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err == nil {
		atomic.AddUint64(&s.metrics.Puts, 1)
	}
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err == nil {
		atomic.AddUint64(&s.metrics.Deletes, 1)
	}
	return err
}

// Metrics returns a copy of the counters with the current on-disk size.
func (s *BadgerStore) Metrics() Metrics {
	lsm, vlog := s.db.Size()
	return Metrics{
		Hits:    atomic.LoadUint64(&s.metrics.Hits),
		Misses:  atomic.LoadUint64(&s.metrics.Misses),
		Puts:    atomic.LoadUint64(&s.metrics.Puts),
		Deletes: atomic.LoadUint64(&s.metrics.Deletes),
		Size:    uint64(lsm + vlog),
	}
}

// Close stops value log GC and closes the database.
func (s *BadgerStore) Close() error {
	close(s.stopGC)
	return s.db.Close()
}

func (s *BadgerStore) runGC() {
	ticker := time.NewTicker(s.config.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.performGC()
		case <-s.stopGC:
			return
		}
	}
}

func (s *BadgerStore) performGC() {
	start := time.Now()
	cycles := 0

	for {
		err := s.db.RunValueLogGC(s.config.GCDiscardRatio)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) {
				if cycles > 0 {
					logging.Debug("badger gc finished", logging.Count("cycle", cycles), logging.Duration("gc", time.Since(start)))
				}
				return
			}
			logging.Warn("badger gc failed", logging.Count("cycle", cycles), logging.Err(err))
			return
		}
		cycles++
	}
}
