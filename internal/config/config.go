package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/domainsuffixes/internal/export"
	"github.com/domainsuffixes/internal/feed"
	"github.com/domainsuffixes/internal/logging"
	"github.com/domainsuffixes/internal/service"
	"github.com/domainsuffixes/internal/snapshot"
)

// Snapshot backends
const (
	BackendBadger = "badger"
	BackendFile   = "file"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig     `yaml:"server"`
	Feeds    FeedsConfig      `yaml:"feeds"`
	Snapshot SnapshotConfig   `yaml:"snapshot"`
	Refresh  RefreshConfig    `yaml:"refresh"`
	Export   export.SQLConfig `yaml:"export"`
	Logging  logging.Config   `yaml:"logging"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	EnableReload    bool          `yaml:"enable_reload"` // expose POST /api/reload
}

// FeedsConfig names the data feeds. Entries may be URLs or paths; paths are
// resolved against LocalDir.
type FeedsConfig struct {
	RootZone       string        `yaml:"root_zone"`
	SuffixList     string        `yaml:"suffix_list"`
	RegDates       string        `yaml:"reg_dates,omitempty"`
	GTLD           string        `yaml:"gtld,omitempty"`
	DelegationBase string        `yaml:"delegation_base,omitempty"`
	LocalDir       string        `yaml:"local_dir,omitempty"`
	Timeout        time.Duration `yaml:"timeout"`
}

// SnapshotConfig holds registry snapshot storage settings
type SnapshotConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Backend        string        `yaml:"backend"` // badger, file
	Path           string        `yaml:"path"`
	Prefix         string        `yaml:"prefix"`
	MaxAge         time.Duration `yaml:"max_age"`
	MaxMemoryMB    int           `yaml:"max_memory_mb"`
	ValueLogMaxMB  int           `yaml:"value_log_max_mb"`
	CompactOnClose bool          `yaml:"compact_on_close"`
	GCInterval     time.Duration `yaml:"gc_interval"`
	GCDiscardRatio float64       `yaml:"gc_discard_ratio"`
}

// RefreshConfig controls background registry rebuilds
type RefreshConfig struct {
	Interval       time.Duration `yaml:"interval"` // 0 disables
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	BuildTimeout   time.Duration `yaml:"build_timeout"`
}

// Default configurations
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func DefaultFeedsConfig() FeedsConfig {
	return FeedsConfig{
		RootZone:   feed.DefaultRootZoneURL,
		SuffixList: feed.DefaultSuffixListURL,
		Timeout:    30 * time.Second,
	}
}

func DefaultSnapshotConfig() SnapshotConfig {
	return SnapshotConfig{
		Enabled:        true,
		Backend:        BackendFile,
		Path:           "./cache/suffixes",
		Prefix:         "suffixes",
		MaxAge:         7 * 24 * time.Hour,
		MaxMemoryMB:    64,
		ValueLogMaxMB:  64,
		CompactOnClose: true,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

func DefaultRefreshConfig() RefreshConfig {
	d := service.DefaultConfig()
	return RefreshConfig{
		Interval:       d.RefreshInterval,
		InitialBackoff: d.InitialBackoff,
		MaxBackoff:     d.MaxBackoff,
		BuildTimeout:   d.BuildTimeout,
	}
}

// DefaultConfig returns a configuration usable without a file
func DefaultConfig() *Config {
	return &Config{
		Server:   DefaultServerConfig(),
		Feeds:    DefaultFeedsConfig(),
		Snapshot: DefaultSnapshotConfig(),
		Refresh:  DefaultRefreshConfig(),
		Export:   export.SQLConfig{Table: export.DefaultTable, BatchSize: export.DefaultBatchSize},
		Logging:  *logging.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields
// the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate and set defaults
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validate fills defaults for fields a partial file left empty
func (c *Config) validate() error {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Feeds.RootZone == "" {
		c.Feeds.RootZone = feed.DefaultRootZoneURL
	}
	if c.Feeds.SuffixList == "" {
		c.Feeds.SuffixList = feed.DefaultSuffixListURL
	}
	if c.Feeds.Timeout == 0 {
		c.Feeds.Timeout = 30 * time.Second
	}

	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = BackendFile
	}
	if c.Snapshot.Prefix == "" {
		c.Snapshot.Prefix = "suffixes"
	}
	if c.Snapshot.Enabled && c.Snapshot.Path == "" {
		c.Snapshot.Path = "./cache/suffixes"
	}
	if c.Snapshot.GCInterval == 0 {
		c.Snapshot.GCInterval = 10 * time.Minute
	}
	if c.Snapshot.GCDiscardRatio == 0 {
		c.Snapshot.GCDiscardRatio = 0.5
	}

	if c.Export.Table == "" {
		c.Export.Table = export.DefaultTable
	}
	if c.Export.BatchSize == 0 {
		c.Export.BatchSize = export.DefaultBatchSize
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if !c.Logging.Console && c.Logging.File == "" {
		c.Logging.Console = true
	}

	return nil
}

// Addr returns host:port for the HTTP listener
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoaderConfig converts the feed locations for feed.NewLoader
func (c *FeedsConfig) LoaderConfig() feed.Config {
	return feed.Config{
		RootZone:       c.RootZone,
		SuffixList:     c.SuffixList,
		RegDates:       c.RegDates,
		GTLD:           c.GTLD,
		DelegationBase: c.DelegationBase,
	}
}

// Source returns the feed source: HTTP for URLs, the local filesystem
// below LocalDir for everything else.
func (c *FeedsConfig) Source() feed.Source {
	return &feed.MultiSource{
		Remote: feed.NewHTTPSource(c.Timeout),
		Local:  feed.NewFileSource(c.LocalDir),
	}
}

// ServiceConfig converts the refresh settings for service.New
func (c *RefreshConfig) ServiceConfig() service.Config {
	return service.Config{
		RefreshInterval: c.Interval,
		InitialBackoff:  c.InitialBackoff,
		MaxBackoff:      c.MaxBackoff,
		BuildTimeout:    c.BuildTimeout,
	}
}

// OpenStore opens the configured snapshot backend. It returns nil when
// snapshots are disabled.
func (c *SnapshotConfig) OpenStore() (snapshot.Store, error) {
	if !c.Enabled {
		return nil, nil
	}

	switch c.Backend {
	case BackendBadger:
		store, err := snapshot.NewBadgerStore(snapshot.BadgerConfig{
			Path:             c.Path,
			MaxMemoryMB:      c.MaxMemoryMB,
			ValueLogMaxMB:    c.ValueLogMaxMB,
			CompactL0OnClose: c.CompactOnClose,
			GCInterval:       c.GCInterval,
			GCDiscardRatio:   c.GCDiscardRatio,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendFile:
		store, err := snapshot.NewFileStore(afero.NewOsFs(), c.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", c.Backend)
	}
}

// Manager wraps store for the service. It returns nil for a nil store.
func (c *SnapshotConfig) Manager(store snapshot.Store) *snapshot.Manager {
	if store == nil {
		return nil
	}
	return snapshot.NewManager(store, snapshot.Key(c.Prefix), c.MaxAge)
}

// CreateExampleConfig writes config.example.yaml with all defaults to dir
func CreateExampleConfig(dir string) error {
	if err := SaveConfig(DefaultConfig(), filepath.Join(dir, "config.example.yaml")); err != nil {
		return fmt.Errorf("failed to create example config: %w", err)
	}
	return nil
}
