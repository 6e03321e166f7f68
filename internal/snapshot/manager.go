package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/domainsuffixes/internal/logging"
	"github.com/domainsuffixes/internal/registry"
)

// BuildFunc produces a fresh registry, typically from feeds.
type BuildFunc func(ctx context.Context) (*registry.Registry, error)

// Manager loads and saves registry snapshots in a Store.
type Manager struct {
	store  Store
	key    string
	maxAge time.Duration
}

// NewManager returns a manager keeping one snapshot under key. Snapshots
// older than maxAge expire; zero keeps them forever.
func NewManager(store Store, key string, maxAge time.Duration) *Manager {
	return &Manager{store: store, key: key, maxAge: maxAge}
}

// Load restores the stored registry. It returns ErrNotFound when nothing
// usable is stored.
func (m *Manager) Load(ctx context.Context) (*registry.Registry, error) {
	data, err := m.store.Get(ctx, m.key)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Save stores reg.
func (m *Manager) Save(ctx context.Context, reg *registry.Registry) error {
	data, err := Encode(reg)
	if err != nil {
		return err
	}
	if err := m.store.Put(ctx, m.key, data, m.maxAge); err != nil {
		return err
	}
	logging.Info("snapshot saved", logging.Count("byte", len(data)))
	return nil
}

// LoadOrBuild returns the stored registry when there is one and otherwise
// builds and saves a new one. A snapshot that fails to decode is discarded
// and rebuilt. cached reports which path was taken.
func (m *Manager) LoadOrBuild(ctx context.Context, build BuildFunc) (reg *registry.Registry, cached bool, err error) {
	reg, err = m.Load(ctx)
	switch {
	case err == nil:
		logging.Info("registry loaded from snapshot")
		return reg, true, nil
	case errors.Is(err, ErrNotFound):
	default:
		logging.Warn("discarding unreadable snapshot", logging.Err(err))
		if derr := m.store.Delete(ctx, m.key); derr != nil {
			logging.Warn("delete snapshot failed", logging.Err(derr))
		}
	}

	reg, err = build(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := m.Save(ctx, reg); err != nil {
		logging.Warn("snapshot save failed", logging.Err(err))
	}
	return reg, false, nil
}
