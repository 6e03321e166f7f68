// Package export writes batch classification results to CSV files and SQL
// databases.
package export

import (
	"context"

	"github.com/domainsuffixes/internal/domain"
)

// Record is one classified host, flattened for tabular output.
type Record struct {
	Input             string `csv:"input"`
	Matched           bool   `csv:"matched"`
	TLD               string `csv:"tld"`
	TLDPunycode       string `csv:"tld_puny"`
	TLDType           string `csv:"tld_type"`
	TLDRegistry       string `csv:"tld_registry"`
	TLDCreated        string `csv:"tld_create_date"`
	EffectiveTLD      string `csv:"effective_tld"`
	Public            bool   `csv:"effective_tld_is_public"`
	RegistrableDomain string `csv:"registrable_domain"`
	PQDN              string `csv:"pqdn"`
	IPv4              bool   `csv:"ipv4"`
	IPv6              bool   `csv:"ipv6"`
}

// NewRecord flattens res. A nil res yields an unmatched record.
func NewRecord(input string, res *domain.ParsedResult) Record {
	rec := Record{Input: input}
	if res == nil {
		return rec
	}

	rec.Matched = true
	rec.TLD = res.TLD
	rec.TLDPunycode = res.TLDPunycode
	rec.TLDType = res.TLDType
	rec.TLDRegistry = res.TLDRegistry
	if res.TLDCreated != nil {
		rec.TLDCreated = res.TLDCreated.Format("2006-01-02")
	}
	rec.EffectiveTLD = res.EffectiveTLD
	rec.Public = res.IsPublic()
	rec.IPv4 = res.IPv4
	rec.IPv6 = res.IPv6
	rec.RegistrableDomain = res.RegistrableDomain()
	rec.PQDN = res.PQDN()
	return rec
}

// Writer receives classified records.
type Writer interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}
