// Package snapshot persists built registries so a process can start without
// refetching every feed.
package snapshot

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a key is absent or expired.
var ErrNotFound = errors.New("snapshot not found")

// Store holds opaque snapshot blobs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Metrics tracks store activity
type Metrics struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Puts    uint64 `json:"puts"`
	Deletes uint64 `json:"deletes"`
	Size    uint64 `json:"size_bytes"`
}

// HitRate returns hits as a percentage of reads.
func (m Metrics) HitRate() float64 {
	total := m.Hits + m.Misses
	if total == 0 {
		return 0
	}
	return float64(m.Hits) / float64(total) * 100
}

// MetricsReporter is implemented by stores that count their activity.
type MetricsReporter interface {
	Metrics() Metrics
}

// Key builds the store key for the current snapshot layout.
func Key(prefix string) string {
	if prefix == "" {
		prefix = "suffixes"
	}
	return fmt.Sprintf("%s:snapshot:v%d", prefix, formatVersion)
}

const expiryHeader = 8

// withExpiry prefixes value with its expiry as unix seconds, zero for none.
func withExpiry(value []byte, ttl time.Duration, now time.Time) []byte {
	full := make([]byte, expiryHeader+len(value))
	if ttl > 0 {
		binary.LittleEndian.PutUint64(full[:expiryHeader], uint64(now.Add(ttl).Unix()))
	}
	copy(full[expiryHeader:], value)
	return full
}

// splitExpiry undoes withExpiry and reports whether the value is still live.
func splitExpiry(full []byte, now time.Time) ([]byte, bool, error) {
	if len(full) < expiryHeader {
		return nil, false, fmt.Errorf("stored value is %d bytes, shorter than its header", len(full))
	}
	exp := binary.LittleEndian.Uint64(full[:expiryHeader])
	if exp != 0 && now.Unix() >= int64(exp) {
		return nil, false, nil
	}
	return full[expiryHeader:], true, nil
}
