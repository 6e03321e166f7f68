package api

import "time"

// HealthChecker provides health check data to the API server.
type HealthChecker interface {
	CheckHealth() *HealthStatus
}

// HealthStatus is the full health check response.
type HealthStatus struct {
	Status    string          `json:"status"` // "ok" or "degraded"
	Time      time.Time       `json:"time"`
	Uptime    string          `json:"uptime"`         // human-readable
	UptimeSec float64         `json:"uptime_seconds"` // machine-readable
	Version   VersionInfo     `json:"version"`
	Registry  RegistryHealth  `json:"registry"`
	Snapshot  *SnapshotHealth `json:"snapshot,omitempty"`
}

// VersionInfo contains build version details.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// RegistryHealth reports the published suffix registry.
type RegistryHealth struct {
	Loaded       bool      `json:"loaded"`
	LoadedAt     time.Time `json:"loaded_at,omitempty"`
	FromSnapshot bool      `json:"from_snapshot"`
	TLDs         int       `json:"tlds"`
	Suffixes     int       `json:"suffixes"`
	LastError    string    `json:"last_error,omitempty"`
}

// SnapshotHealth reports snapshot store activity.
type SnapshotHealth struct {
	Backend string  `json:"backend"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}
