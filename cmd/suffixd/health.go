package main

import (
	"time"

	"github.com/domainsuffixes/internal/api"
	"github.com/domainsuffixes/internal/service"
	"github.com/domainsuffixes/internal/snapshot"
	"github.com/domainsuffixes/internal/version"
)

// serverHealthChecker implements api.HealthChecker using concrete server dependencies.
type serverHealthChecker struct {
	svc       *service.Service
	store     snapshot.Store
	backend   string
	startTime time.Time
}

func (h *serverHealthChecker) CheckHealth() *api.HealthStatus {
	now := time.Now().UTC()
	uptime := now.Sub(h.startTime)

	status := &api.HealthStatus{
		Status:    "ok",
		Time:      now,
		Uptime:    uptime.Truncate(time.Second).String(),
		UptimeSec: uptime.Seconds(),
		Version: api.VersionInfo{
			Version:   version.GetVersionInfo(),
			GitCommit: version.GitCommit,
			BuildTime: version.BuildTime,
		},
		Registry: api.RegistryHealthFrom(h.svc.Status()),
	}
	if !status.Registry.Loaded || status.Registry.LastError != "" {
		status.Status = "degraded"
	}

	// Snapshot store stats (if enabled)
	if reporter, ok := h.store.(snapshot.MetricsReporter); ok {
		metrics := reporter.Metrics()
		status.Snapshot = &api.SnapshotHealth{
			Backend: h.backend,
			Hits:    metrics.Hits,
			Misses:  metrics.Misses,
			HitRate: metrics.HitRate(),
		}
	}

	return status
}
