// Package api serves suffix queries over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/domainsuffixes/internal/domain"
	"github.com/domainsuffixes/internal/logging"
	"github.com/domainsuffixes/internal/registry"
	"github.com/domainsuffixes/internal/service"
	"github.com/domainsuffixes/internal/version"
)

// Backend supplies the registry the handlers query.
type Backend interface {
	Parser() (*domain.Parser, error)
	Registry() *registry.Registry
	Reload(ctx context.Context) (*registry.Registry, error)
	Status() service.Status
}

// Server represents the API server
type Server struct {
	backend       Backend
	healthChecker HealthChecker
	reloadEnabled bool
	startTime     time.Time
}

// New creates a new API server
func New(backend Backend) *Server {
	return &Server{
		backend:   backend,
		startTime: time.Now(),
	}
}

// SetHealthChecker sets the health checker for the server
func (s *Server) SetHealthChecker(hc HealthChecker) {
	s.healthChecker = hc
}

// EnableReload exposes POST /api/reload
func (s *Server) EnableReload(enabled bool) {
	s.reloadEnabled = enabled
}

// TLDResponse is returned by /api/tld.
type TLDResponse struct {
	Host string `json:"host"`
	TLD  string `json:"tld"`
}

// ParseResponse is returned by /api/parse.
type ParseResponse struct {
	Host string `json:"host"`
	*domain.ParsedResult
	FQDN              string `json:"fqdn"`
	RegistrableDomain string `json:"registrable_domain,omitempty"`
	PQDN              string `json:"pqdn,omitempty"`
	TLDMultiPart      bool   `json:"tld_multi_part"`
	TLDASCII          string `json:"tld_ascii,omitempty"`
	IPv4Private       *bool  `json:"ipv4_private,omitempty"`
}

// TLDInfo describes one top-level domain in /api/tlds.
type TLDInfo struct {
	TLD           string     `json:"tld"`
	Punycode      string     `json:"tld_puny,omitempty"`
	Type          string     `json:"tld_type"`
	Registry      string     `json:"tld_registry,omitempty"`
	Created       *time.Time `json:"tld_create_date,omitempty"`
	DelegationRef string     `json:"tld_delegation_link,omitempty"`
}

// TLDListResponse is returned by /api/tlds.
type TLDListResponse struct {
	Count int       `json:"count"`
	TLDs  []TLDInfo `json:"tlds"`
}

// StatsResponse is returned by /api/stats and /api/reload.
type StatsResponse struct {
	LoadedAt     time.Time      `json:"loaded_at"`
	FromSnapshot bool           `json:"from_snapshot"`
	Stats        registry.Stats `json:"stats"`
}

// HealthHandler handles health check requests
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if s.healthChecker != nil {
		WriteJSONSuccess(w, s.healthChecker.CheckHealth())
		return
	}
	WriteJSONSuccess(w, s.defaultHealth())
}

func (s *Server) defaultHealth() *HealthStatus {
	now := time.Now().UTC()
	uptime := now.Sub(s.startTime)

	status := &HealthStatus{
		Status:    "ok",
		Time:      now,
		Uptime:    uptime.Truncate(time.Second).String(),
		UptimeSec: uptime.Seconds(),
		Version: VersionInfo{
			Version:   version.Version,
			GitCommit: version.GitCommit,
			BuildTime: version.BuildTime,
		},
		Registry: RegistryHealthFrom(s.backend.Status()),
	}
	if !status.Registry.Loaded {
		status.Status = "degraded"
	}
	return status
}

// RegistryHealthFrom converts a service status for health output.
func RegistryHealthFrom(st service.Status) RegistryHealth {
	return RegistryHealth{
		Loaded:       st.Ready,
		LoadedAt:     st.LoadedAt,
		FromSnapshot: st.FromSnapshot,
		TLDs:         st.Stats.TLDs,
		Suffixes:     st.Stats.PublicSuffixes + st.Stats.PrivateSuffixes,
		LastError:    st.LastError,
	}
}

// parser returns the current parser or writes 503.
func (s *Server) parser(w http.ResponseWriter) (*domain.Parser, bool) {
	p, err := s.backend.Parser()
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusServiceUnavailable)
		return nil, false
	}
	return p, true
}

// TLDHandler answers GET /api/tld?host=
func (s *Server) TLDHandler(w http.ResponseWriter, r *http.Request) {
	host, err := parseHostParam(r.URL.Query())
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, ok := s.parser(w)
	if !ok {
		return
	}

	tld, found := p.GetTLD(host)
	if !found {
		WriteJSONError(w, "no known suffix for "+host, http.StatusNotFound)
		return
	}
	WriteJSONSuccess(w, TLDResponse{Host: host, TLD: tld})
}

// ParseHandler answers GET /api/parse?host=&skip_ip_check=&strip_protocol=
func (s *Server) ParseHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	host, err := parseHostParam(query)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts, err := parseParseOptions(query)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, ok := s.parser(w)
	if !ok {
		return
	}

	res, found := p.ParseWith(host, opts)
	if !found {
		WriteJSONError(w, "no known suffix for "+host, http.StatusNotFound)
		return
	}

	resp := ParseResponse{
		Host:              host,
		ParsedResult:      res,
		FQDN:              res.FQDN(),
		RegistrableDomain: res.RegistrableDomain(),
		PQDN:              res.PQDN(),
		TLDMultiPart:      res.IsTLDMultiPart(),
	}
	if res.IsFQDN() {
		resp.TLDASCII = res.ASCIIifyTLD()
	}
	if private, ok := res.IsIPv4Private(); ok {
		resp.IPv4Private = &private
	}
	WriteJSONSuccess(w, resp)
}

// TLDsHandler answers GET /api/tlds with an optional type filter.
func (s *Server) TLDsHandler(w http.ResponseWriter, r *http.Request) {
	typ, filtered, err := parseTypeParam(r.URL.Query())
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	reg := s.backend.Registry()
	if reg == nil {
		WriteJSONError(w, service.ErrNotReady.Error(), http.StatusServiceUnavailable)
		return
	}

	resp := TLDListResponse{TLDs: []TLDInfo{}}
	for _, name := range reg.AllTLDs() {
		rec, ok := reg.TLD(name)
		if !ok || (filtered && rec.Type != typ) {
			continue
		}
		resp.TLDs = append(resp.TLDs, TLDInfo{
			TLD:           rec.Suffix,
			Punycode:      rec.Punycode,
			Type:          string(rec.Type),
			Registry:      rec.Registry,
			Created:       rec.Created,
			DelegationRef: rec.DelegationRef,
		})
	}
	resp.Count = len(resp.TLDs)
	WriteJSONSuccess(w, resp)
}

// StatsHandler answers GET /api/stats
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	st := s.backend.Status()
	if !st.Ready {
		WriteJSONError(w, service.ErrNotReady.Error(), http.StatusServiceUnavailable)
		return
	}
	WriteJSONSuccess(w, StatsResponse{
		LoadedAt:     st.LoadedAt,
		FromSnapshot: st.FromSnapshot,
		Stats:        st.Stats,
	})
}

// ReloadHandler answers POST /api/reload by rebuilding from feeds.
func (s *Server) ReloadHandler(w http.ResponseWriter, r *http.Request) {
	if !s.reloadEnabled {
		WriteJSONError(w, "reload is disabled", http.StatusForbidden)
		return
	}

	if _, err := s.backend.Reload(r.Context()); err != nil {
		logging.Error("reload via API failed", logging.Err(err))
		status := http.StatusBadGateway
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		WriteJSONError(w, err.Error(), status)
		return
	}

	st := s.backend.Status()
	WriteJSONSuccess(w, StatsResponse{
		LoadedAt:     st.LoadedAt,
		FromSnapshot: st.FromSnapshot,
		Stats:        st.Stats,
	})
}
