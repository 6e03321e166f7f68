package registry

import (
	"time"

	"github.com/domainsuffixes/internal/trie"
)

// PrivateMarker starts the private section of the public suffix list.
const PrivateMarker = "// ===BEGIN PRIVATE DOMAINS==="

// TLDEntry is one top-level domain as delivered by a feed.
type TLDEntry struct {
	Suffix        string       `json:"suffix"`
	Punycode      string       `json:"punycode,omitempty"`
	DelegationRef string       `json:"delegation_ref,omitempty"`
	Type          trie.TLDType `json:"type"`
	Registry      string       `json:"registry,omitempty"`
	Created       *time.Time   `json:"created,omitempty"`
}

func (e TLDEntry) record() *trie.TLDRecord {
	rec := &trie.TLDRecord{
		Suffix:        e.Suffix,
		Punycode:      e.Punycode,
		DelegationRef: e.DelegationRef,
		Type:          e.Type,
		Registry:      e.Registry,
	}
	if e.Created != nil {
		c := *e.Created
		rec.Created = &c
	}
	return rec
}

func entryOf(rec *trie.TLDRecord) TLDEntry {
	e := TLDEntry{
		Suffix:        rec.Suffix,
		Punycode:      rec.Punycode,
		DelegationRef: rec.DelegationRef,
		Type:          rec.Type,
		Registry:      rec.Registry,
	}
	if rec.Created != nil {
		c := *rec.Created
		e.Created = &c
	}
	return e
}

// Enrichment carries secondary TLD data applied after all insertions.
type Enrichment struct {
	TLD              string
	RegistryOperator string
	Created          *time.Time
}

// Feed is everything a registry is built from.
type Feed struct {
	// TLDs are the delegated top-level domains.
	TLDs []TLDEntry
	// Manual entries are added after TLDs unless already present.
	Manual []TLDEntry
	// SuffixLines are the raw lines of the public suffix list.
	SuffixLines []string
	// Enrichment is optional; every TLD it names must exist.
	Enrichment []Enrichment
}

// TorTLD returns the curated entry for the .onion pseudo-TLD, which the IANA
// root zone does not list.
func TorTLD() TLDEntry {
	created := time.Date(2015, 9, 15, 0, 0, 0, 0, time.UTC)
	return TLDEntry{
		Suffix:   "onion",
		Type:     trie.TypeHostSuffix,
		Registry: "Tor",
		Created:  &created,
	}
}
