// Package registry builds and serves the catalog of known top-level domains
// and public/private suffixes.
//
// A Registry is assembled once by Build or FromSnapshot and never changes
// afterwards, so any number of goroutines may query it without locking. New
// data is published by building a fresh Registry and swapping it into a
// Holder.
package registry

import (
	"sort"

	"github.com/domainsuffixes/internal/label"
	"github.com/domainsuffixes/internal/trie"
)

// Registry is an immutable suffix catalog.
type Registry struct {
	trie *trie.Trie
	tlds map[string]*trie.TLDRecord
	puny *label.PunycodeIndex
}

func newRegistry(t *trie.Trie, tlds map[string]*trie.TLDRecord, puny *label.PunycodeIndex) *Registry {
	return &Registry{trie: t, tlds: tlds, puny: puny}
}

// Lookup runs the longest-match algorithm for fqdn.
func (r *Registry) Lookup(fqdn string) trie.Match {
	return r.trie.LongestMatch(fqdn, r.puny)
}

// GetTLD returns the longest known suffix of fqdn.
func (r *Registry) GetTLD(fqdn string) (string, bool) {
	m := r.Lookup(fqdn)
	if !m.Found() {
		return "", false
	}
	return m.Meta.SuffixName(), true
}

// AllTLDs returns every top-level label, sorted.
func (r *Registry) AllTLDs() []string {
	return r.trie.TopLevel()
}

// TLD returns the record for a top-level label. ACE labels with a known
// alias resolve to their Unicode record.
func (r *Registry) TLD(l string) (*trie.TLDRecord, bool) {
	rec, ok := r.tlds[r.puny.Canonical(l)]
	return rec, ok
}

// Punycode returns the ACE to Unicode index.
func (r *Registry) Punycode() *label.PunycodeIndex {
	return r.puny
}

// Stats summarises registry contents.
type Stats struct {
	TLDs            int            `json:"tlds"`
	PublicSuffixes  int            `json:"public_suffixes"`
	PrivateSuffixes int            `json:"private_suffixes"`
	PunycodeAliases int            `json:"punycode_aliases"`
	ByType          map[string]int `json:"by_type"`
}

// Stats counts records by kind and TLD type.
func (r *Registry) Stats() Stats {
	s := Stats{
		TLDs:            len(r.tlds),
		PunycodeAliases: r.puny.Len(),
		ByType:          make(map[string]int),
	}
	for _, rec := range r.tlds {
		s.ByType[string(rec.Type)]++
	}
	_ = r.trie.Walk(func(m trie.Metadata) error {
		switch rec := m.(type) {
		case *trie.SuffixRecord:
			if rec.Public {
				s.PublicSuffixes++
			} else {
				s.PrivateSuffixes++
			}
		case *trie.TLDRecord:
		}
		return nil
	})
	return s
}

// tldKeys returns TLD record keys in sorted order.
func (r *Registry) tldKeys() []string {
	keys := make([]string, 0, len(r.tlds))
	for k := range r.tlds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
