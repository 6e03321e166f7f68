// Package domain decomposes host names against a suffix registry.
package domain

import (
	"strings"

	"github.com/domainsuffixes/internal/registry"
	"github.com/domainsuffixes/internal/trie"
)

// Options adjusts a single Parse call.
type Options struct {
	// SkipIPCheck treats IP-looking input as a domain name.
	SkipIPCheck bool
	// StripProtocol drops everything up to and including "://".
	StripProtocol bool
}

// Parser answers queries against one registry. It is safe for concurrent use.
type Parser struct {
	reg *registry.Registry
}

// NewParser returns a parser bound to reg.
func NewParser(reg *registry.Registry) *Parser {
	return &Parser{reg: reg}
}

// Registry returns the registry the parser reads.
func (p *Parser) Registry() *registry.Registry {
	return p.reg
}

// Parse decomposes host with default options.
func (p *Parser) Parse(host string) (*ParsedResult, bool) {
	return p.ParseWith(host, Options{})
}

// ParseWith decomposes host. It reports false when host has no known suffix.
func (p *Parser) ParseWith(host string, opts Options) (*ParsedResult, bool) {
	if !opts.SkipIPCheck {
		if IsIPv4Literal(host) {
			return ipResult(host, true), true
		}
		if IsIPv6Literal(host) {
			return ipResult(host, false), true
		}
	}

	if opts.StripProtocol {
		if i := strings.Index(host, "://"); i >= 0 {
			host = host[i+3:]
		}
	}

	m := p.reg.Lookup(host)
	res := &ParsedResult{HostLabels: m.Residual}

	switch rec := m.Meta.(type) {
	case *trie.TLDRecord:
		copyTLD(res, rec)
		res.EffectiveTLD = rec.Suffix
		res.EffectiveTLDIsPublic = boolPtr(true)
	case *trie.SuffixRecord:
		copyTLD(res, rec.TLD())
		res.EffectiveTLD = rec.Suffix
		res.EffectiveTLDIsPublic = boolPtr(rec.Public)
	case nil:
		return nil, false
	}
	return res, true
}

func boolPtr(b bool) *bool { return &b }

func copyTLD(res *ParsedResult, rec *trie.TLDRecord) {
	res.TLD = rec.Suffix
	res.TLDPunycode = rec.Punycode
	res.TLDDelegationRef = rec.DelegationRef
	res.TLDType = string(rec.Type)
	res.TLDRegistry = rec.Registry
	if rec.Created != nil {
		c := *rec.Created
		res.TLDCreated = &c
	}
}

func ipResult(ip string, v4 bool) *ParsedResult {
	return &ParsedResult{
		HostLabels: []string{ip},
		IPv4:       v4,
		IPv6:       !v4,
	}
}

// GetTLD returns the effective TLD of host.
func (p *Parser) GetTLD(host string) (string, bool) {
	return p.reg.GetTLD(host)
}

// AllTLDs returns every known top-level label.
func (p *Parser) AllTLDs() []string {
	return p.reg.AllTLDs()
}

// RegistrableDomains counts hosts per registrable domain. Hosts without one
// are skipped.
func (p *Parser) RegistrableDomains(hosts []string) map[string]int {
	domains := make(map[string]int)
	for _, h := range hosts {
		norm, err := NormalizeHost(h)
		if err != nil {
			continue
		}
		res, ok := p.Parse(norm)
		if !ok {
			continue
		}
		if d := res.RegistrableDomain(); d != "" {
			domains[d]++
		}
	}
	return domains
}
