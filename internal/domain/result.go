package domain

import (
	"net"
	"strings"
	"time"

	"github.com/domainsuffixes/internal/label"
)

// ParsedResult is the decomposition of one host name. It holds copies of the
// registry data it was built from and stays valid after the registry is
// replaced.
//
// For IP literals every suffix field is empty or nil, HostLabels holds the
// address and exactly one of IPv4 and IPv6 is set.
type ParsedResult struct {
	TLD                  string     `json:"tld,omitempty"`
	TLDPunycode          string     `json:"tld_puny,omitempty"`
	TLDDelegationRef     string     `json:"tld_delegation_link,omitempty"`
	TLDType              string     `json:"tld_type,omitempty"`
	TLDRegistry          string     `json:"tld_registry,omitempty"`
	TLDCreated           *time.Time `json:"tld_create_date,omitempty"`
	EffectiveTLD         string     `json:"effective_tld,omitempty"`
	EffectiveTLDIsPublic *bool      `json:"effective_tld_is_public,omitempty"`
	HostLabels           []string   `json:"host_labels"`
	IPv4                 bool       `json:"ipv4"`
	IPv6                 bool       `json:"ipv6"`
}

// IsPublic reports whether the effective TLD is a public suffix. It is false
// for IP literals.
func (r *ParsedResult) IsPublic() bool {
	return r.EffectiveTLDIsPublic != nil && *r.EffectiveTLDIsPublic
}

// IsIP reports whether the input was an IP literal.
func (r *ParsedResult) IsIP() bool {
	return r.IPv4 || r.IPv6
}

// IsFQDN reports whether the input was a domain name.
func (r *ParsedResult) IsFQDN() bool {
	return !r.IsIP()
}

// hasHost reports whether a label sits directly left of the suffix.
func (r *ParsedResult) hasHost() bool {
	return r.IsFQDN() && len(r.HostLabels) > 0
}

// RegistrableDomain returns the label left of the effective TLD joined with
// it, e.g. "example.co.uk". It is empty for IP literals and for input that is
// itself a suffix.
func (r *ParsedResult) RegistrableDomain() string {
	if !r.hasHost() {
		return ""
	}
	return r.HostLabels[len(r.HostLabels)-1] + "." + r.EffectiveTLD
}

// RegistrableDomainHost returns the label left of the effective TLD.
func (r *ParsedResult) RegistrableDomainHost() string {
	if !r.hasHost() {
		return ""
	}
	return r.HostLabels[len(r.HostLabels)-1]
}

// PQDN returns the labels left of the registrable domain, dot joined.
func (r *ParsedResult) PQDN() string {
	return strings.Join(r.PQDNLabels(), ".")
}

// PQDNLabels returns the labels left of the registrable domain. It is nil
// when there is no registrable domain.
func (r *ParsedResult) PQDNLabels() []string {
	if !r.hasHost() {
		return nil
	}
	out := make([]string, len(r.HostLabels)-1)
	copy(out, r.HostLabels[:len(r.HostLabels)-1])
	return out
}

// FQDN reconstructs the full name, or returns the address for IP literals.
func (r *ParsedResult) FQDN() string {
	if r.IsIP() {
		if len(r.HostLabels) == 0 {
			return ""
		}
		return r.HostLabels[0]
	}
	if len(r.HostLabels) == 0 {
		return r.EffectiveTLD
	}
	return strings.Join(r.HostLabels, ".") + "." + r.EffectiveTLD
}

// IsTLDMultiPart reports whether the effective TLD spans more than the TLD,
// as "co.uk" does.
func (r *ParsedResult) IsTLDMultiPart() bool {
	return r.IsFQDN() && r.TLD != r.EffectiveTLD
}

// IsPunycode reports whether the TLD has an ACE alias.
func (r *ParsedResult) IsPunycode() bool {
	return r.TLDPunycode != ""
}

// ASCIIifyTLD returns an ASCII rendering of the TLD for display.
func (r *ParsedResult) ASCIIifyTLD() string {
	if !r.IsPunycode() {
		return r.TLD
	}
	s, err := label.ASCIIifyPuny(r.TLDPunycode)
	if err != nil {
		return label.Transliterate(r.TLD)
	}
	return s
}

// IsIPv4Private reports whether an IPv4 result is loopback or RFC 1918
// space. ok is false for anything other than an IPv4 literal.
func (r *ParsedResult) IsIPv4Private() (private bool, ok bool) {
	if !r.IPv4 {
		return false, false
	}
	ip := net.ParseIP(r.FQDN())
	if ip == nil {
		return false, false
	}
	return isPrivateIPv4(ip), true
}

// ASCIIifyPuny decodes an ACE host and transliterates it to ASCII.
func ASCIIifyPuny(host string) (string, error) {
	return label.ASCIIifyPuny(host)
}

// ASCIIifyUnicode transliterates a Unicode host to ASCII.
func ASCIIifyUnicode(host string) string {
	return label.Transliterate(host)
}
