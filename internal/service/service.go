// Package service owns the lifecycle of the published suffix registry:
// restoring it from a snapshot, rebuilding it from feeds and refreshing it
// in the background.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/domainsuffixes/internal/domain"
	"github.com/domainsuffixes/internal/logging"
	"github.com/domainsuffixes/internal/registry"
	"github.com/domainsuffixes/internal/snapshot"
)

// ErrNotReady is returned while no registry has been published.
var ErrNotReady = errors.New("registry not loaded")

// FeedLoader produces the raw feed a registry is built from.
type FeedLoader interface {
	Load(ctx context.Context) (*registry.Feed, error)
}

// Config controls background refresh.
type Config struct {
	RefreshInterval time.Duration // zero disables Run
	InitialBackoff  time.Duration // first retry delay after a failed refresh
	MaxBackoff      time.Duration // retry delay ceiling
	BuildTimeout    time.Duration // upper bound for one fetch and build
}

// DefaultConfig refreshes daily.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 24 * time.Hour,
		InitialBackoff:  30 * time.Second,
		MaxBackoff:      30 * time.Minute,
		BuildTimeout:    2 * time.Minute,
	}
}

// Status describes the published registry.
type Status struct {
	Ready        bool           `json:"ready"`
	LoadedAt     time.Time      `json:"loaded_at,omitempty"`
	FromSnapshot bool           `json:"from_snapshot"`
	LastError    string         `json:"last_error,omitempty"`
	Stats        registry.Stats `json:"stats"`
}

// Service publishes a registry and replaces it on reload. Readers never
// block on a reload; they keep the registry they already hold.
type Service struct {
	holder    *registry.Holder
	loader    FeedLoader
	snapshots *snapshot.Manager
	cfg       Config
	group     singleflight.Group

	mu           sync.Mutex
	loadedAt     time.Time
	fromSnapshot bool
	lastErr      error
}

// New returns a service. snapshots may be nil to always build from feeds.
func New(loader FeedLoader, snapshots *snapshot.Manager, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = def.BuildTimeout
	}
	return &Service{
		holder:    registry.NewHolder(nil),
		loader:    loader,
		snapshots: snapshots,
		cfg:       cfg,
	}
}

// Init publishes the stored snapshot, or builds and saves a registry when
// there is none.
func (s *Service) Init(ctx context.Context) error {
	var (
		reg    *registry.Registry
		cached bool
		err    error
	)
	if s.snapshots != nil {
		reg, cached, err = s.snapshots.LoadOrBuild(ctx, s.build)
	} else {
		reg, err = s.build(ctx)
	}
	if err != nil {
		s.setError(err)
		return fmt.Errorf("initial registry load failed: %w", err)
	}

	s.publish(reg, cached)
	return nil
}

// Reload rebuilds the registry from feeds and publishes it. Concurrent
// callers share one rebuild. A failed rebuild leaves the current registry in
// place.
func (s *Service) Reload(ctx context.Context) (*registry.Registry, error) {
	ch := s.group.DoChan("reload", func() (interface{}, error) {
		// The rebuild outlives a caller that gives up waiting.
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.BuildTimeout)
		defer cancel()

		reg, err := s.build(bctx)
		if err != nil {
			s.setError(err)
			return nil, err
		}
		s.publish(reg, false)

		if s.snapshots != nil {
			if err := s.snapshots.Save(bctx, reg); err != nil {
				logging.Warn("snapshot save failed", logging.Err(err))
			}
		}
		return reg, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*registry.Registry), nil
	}
}

func (s *Service) build(ctx context.Context) (*registry.Registry, error) {
	if s.loader == nil {
		return nil, errors.New("no feed loader configured")
	}
	feed, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return registry.Build(feed)
}

func (s *Service) publish(reg *registry.Registry, fromSnapshot bool) {
	s.holder.Store(reg)

	s.mu.Lock()
	s.loadedAt = time.Now()
	s.fromSnapshot = fromSnapshot
	s.lastErr = nil
	s.mu.Unlock()

	stats := reg.Stats()
	logging.Info("registry published",
		logging.Count("tld", stats.TLDs),
		logging.Count("public_suffix", stats.PublicSuffixes),
		logging.Count("private_suffix", stats.PrivateSuffixes))
}

func (s *Service) setError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// Registry returns the published registry or nil.
func (s *Service) Registry() *registry.Registry {
	return s.holder.Load()
}

// Parser returns a parser over the published registry.
func (s *Service) Parser() (*domain.Parser, error) {
	reg := s.holder.Load()
	if reg == nil {
		return nil, ErrNotReady
	}
	return domain.NewParser(reg), nil
}

// Status reports the state of the published registry.
func (s *Service) Status() Status {
	s.mu.Lock()
	st := Status{
		LoadedAt:     s.loadedAt,
		FromSnapshot: s.fromSnapshot,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	s.mu.Unlock()

	if reg := s.holder.Load(); reg != nil {
		st.Ready = true
		st.Stats = reg.Stats()
	}
	return st
}
