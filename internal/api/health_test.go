package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockHealthChecker struct {
	status *HealthStatus
}

func (m *mockHealthChecker) CheckHealth() *HealthStatus {
	return m.status
}

func TestHealthHandler_WithChecker(t *testing.T) {
	s := &Server{}
	s.SetHealthChecker(&mockHealthChecker{
		status: &HealthStatus{
			Status:    "ok",
			Time:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Uptime:    "1h0m0s",
			UptimeSec: 3600,
			Version: VersionInfo{
				Version:   "1.0.0",
				GitCommit: "abc123",
				BuildTime: "2026-01-01",
			},
			Registry: RegistryHealth{
				Loaded:   true,
				TLDs:     1591,
				Suffixes: 9800,
			},
			Snapshot: &SnapshotHealth{Backend: "badger", Hits: 3, HitRate: 100},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	s.HealthHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var result HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Status != "ok" {
		t.Errorf("expected status ok, got %s", result.Status)
	}
	if !result.Registry.Loaded || result.Registry.TLDs != 1591 {
		t.Errorf("unexpected registry health: %+v", result.Registry)
	}
	if result.Version.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %s", result.Version.Version)
	}
	if result.Snapshot == nil || result.Snapshot.Backend != "badger" {
		t.Errorf("unexpected snapshot health: %+v", result.Snapshot)
	}
}

func TestHealthHandler_Default(t *testing.T) {
	tests := []struct {
		name       string
		backend    *fakeBackend
		wantStatus string
		wantLoaded bool
	}{
		{"loaded", newFakeBackend(t), "ok", true},
		{"not loaded", &fakeBackend{}, "degraded", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.backend)

			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			w := httptest.NewRecorder()
			s.HealthHandler(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			var result HealthStatus
			if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if result.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", result.Status, tt.wantStatus)
			}
			if result.Registry.Loaded != tt.wantLoaded {
				t.Errorf("registry.loaded = %v, want %v", result.Registry.Loaded, tt.wantLoaded)
			}
			if result.Version.Version == "" {
				t.Error("version missing")
			}
		})
	}
}
