package snapshot

import (
	"context"
	"errors"
	"os"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
)

// FileStore keeps one file per key below Dir. Each file starts with an
// 8-byte expiry header.
type FileStore struct {
	fs      afero.Fs
	dir     string
	now     func() time.Time
	metrics Metrics
}

// NewFileStore returns a store writing below dir on fs.
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{fs: fs, dir: dir, now: time.Now}, nil
}

func (s *FileStore) path(key string) string {
	return path.Join(s.dir, strings.NewReplacer(":", "_", "/", "_").Replace(key)+".snap")
}

// Get returns the value for key or ErrNotFound. Expired files are removed.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := s.path(key)
	full, err := afero.ReadFile(s.fs, p)
	if errors.Is(err, os.ErrNotExist) {
		atomic.AddUint64(&s.metrics.Misses, 1)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	value, live, err := splitExpiry(full, s.now())
	if err != nil {
		return nil, err
	}
	if !live {
		_ = s.fs.Remove(p)
		atomic.AddUint64(&s.metrics.Misses, 1)
		return nil, ErrNotFound
	}
	atomic.AddUint64(&s.metrics.Hits, 1)
	return value, nil
}

// Put writes value to a temporary file and renames it over the old one.
func (s *FileStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.path(key)
	tmp := p + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, withExpiry(value, ttl, s.now()), 0o644); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}
	atomic.AddUint64(&s.metrics.Puts, 1)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	atomic.AddUint64(&s.metrics.Deletes, 1)
	return nil
}

// Metrics returns a copy of the counters.
func (s *FileStore) Metrics() Metrics {
	return Metrics{
		Hits:    atomic.LoadUint64(&s.metrics.Hits),
		Misses:  atomic.LoadUint64(&s.metrics.Misses),
		Puts:    atomic.LoadUint64(&s.metrics.Puts),
		Deletes: atomic.LoadUint64(&s.metrics.Deletes),
	}
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}
