package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/domainsuffixes/internal/logging"
	"github.com/domainsuffixes/internal/snapshot"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("missing file should yield defaults (-want +got):\n%s", diff)
	}
}

func TestReloadEndpointOptIn(t *testing.T) {
	if DefaultConfig().Server.EnableReload {
		t.Error("reload endpoint enabled by default")
	}

	tests := []struct {
		name string
		data string
		want bool
	}{
		{"omitted", "server:\n  port: 9090\n", false},
		{"enabled", "server:\n  enable_reload: true\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if cfg.Server.EnableReload != tt.want {
				t.Errorf("EnableReload = %v, want %v", cfg.Server.EnableReload, tt.want)
			}
		})
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
feeds:
  root_zone: root.html
  suffix_list: public_suffix_list.dat
  local_dir: /srv/feeds
snapshot:
  enabled: true
  backend: badger
  path: /var/lib/suffixes
  max_age: 48h
refresh:
  interval: 6h
logging:
  level: debug
  json: true
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Feeds.LocalDir != "/srv/feeds" || cfg.Feeds.Timeout != 30*time.Second {
		t.Errorf("feeds = %+v", cfg.Feeds)
	}
	if cfg.Snapshot.Backend != BackendBadger || cfg.Snapshot.MaxAge != 48*time.Hour {
		t.Errorf("snapshot = %+v", cfg.Snapshot)
	}
	if cfg.Refresh.Interval != 6*time.Hour || cfg.Refresh.MaxBackoff != 30*time.Minute {
		t.Errorf("refresh = %+v", cfg.Refresh)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.JSON {
		t.Errorf("logging = %+v", cfg.Logging)
	}

	lc := cfg.Feeds.LoaderConfig()
	if lc.RootZone != "root.html" || lc.SuffixList != "public_suffix_list.dat" {
		t.Errorf("LoaderConfig = %+v", lc)
	}
	if sc := cfg.Refresh.ServiceConfig(); sc.RefreshInterval != 6*time.Hour {
		t.Errorf("ServiceConfig = %+v", sc)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "server: [port"},
		{"bad level", "logging:\n  level: chatty\n"},
		{"bad backend", "snapshot:\n  enabled: true\n  backend: redis\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("LoadConfig succeeded")
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	want := DefaultConfig()
	want.Server.Port = 8181
	want.Export.Dialect = "sqlite3"
	want.Export.DSN = "results.db"

	if err := SaveConfig(want, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(logging.Config{}, "Output")); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateExampleConfig(t *testing.T) {
	dir := t.TempDir()
	if err := CreateExampleConfig(dir); err != nil {
		t.Fatalf("CreateExampleConfig: %v", err)
	}
	if _, err := LoadConfig(filepath.Join(dir, "config.example.yaml")); err != nil {
		t.Errorf("example config does not load: %v", err)
	}
}

func TestOpenStore(t *testing.T) {
	disabled := SnapshotConfig{}
	store, err := disabled.OpenStore()
	if err != nil || store != nil {
		t.Fatalf("disabled OpenStore = %v, %v", store, err)
	}
	if disabled.Manager(store) != nil {
		t.Error("Manager(nil) should be nil")
	}

	cfg := DefaultSnapshotConfig()
	cfg.Path = t.TempDir()
	store, err = cfg.OpenStore()
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*snapshot.FileStore); !ok {
		t.Errorf("store type = %T, want *snapshot.FileStore", store)
	}
	if cfg.Manager(store) == nil {
		t.Error("Manager returned nil for an open store")
	}

	cfg.Backend = "redis"
	if _, err := cfg.OpenStore(); err == nil {
		t.Error("unknown backend opened")
	}
}
