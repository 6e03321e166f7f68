package registry

import (
	"fmt"
	"time"

	"github.com/domainsuffixes/internal/label"
	"github.com/domainsuffixes/internal/trie"
)

// SnapshotVersion is the current snapshot layout.
const SnapshotVersion = 1

// SuffixEntry is a serialized SuffixRecord. TLD names the owning record.
type SuffixEntry struct {
	Suffix string `json:"suffix"`
	Public bool   `json:"public"`
	TLD    string `json:"tld"`
}

// Snapshot is the stable, format-neutral form of a Registry. Replaying it
// through FromSnapshot yields a registry that answers every query the same
// way.
type Snapshot struct {
	Version  int           `json:"version"`
	BuiltAt  time.Time     `json:"built_at"`
	TLDs     []TLDEntry    `json:"tlds"`
	Suffixes []SuffixEntry `json:"suffixes"`
	Punycode []label.Entry `json:"punycode"`
}

// Snapshot flattens the registry. Records are emitted in sorted order so
// equal registries produce equal snapshots.
func (r *Registry) Snapshot() *Snapshot {
	s := &Snapshot{
		Version:  SnapshotVersion,
		BuiltAt:  time.Now().UTC(),
		TLDs:     make([]TLDEntry, 0, len(r.tlds)),
		Punycode: r.puny.Entries(),
	}
	for _, k := range r.tldKeys() {
		s.TLDs = append(s.TLDs, entryOf(r.tlds[k]))
	}
	_ = r.trie.Walk(func(m trie.Metadata) error {
		if rec, ok := m.(*trie.SuffixRecord); ok {
			s.Suffixes = append(s.Suffixes, SuffixEntry{
				Suffix: rec.Suffix,
				Public: rec.Public,
				TLD:    rec.TLD().Suffix,
			})
		}
		return nil
	})
	return s
}

// FromSnapshot restores a registry. The punycode index is taken verbatim.
func FromSnapshot(s *Snapshot) (*Registry, error) {
	if s == nil {
		return nil, fmt.Errorf("nil snapshot: %w", ErrUnsupportedSnapshot)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("version %d: %w", s.Version, ErrUnsupportedSnapshot)
	}

	b := &builder{
		trie: trie.New(),
		tlds: make(map[string]*trie.TLDRecord, len(s.TLDs)),
	}
	for _, e := range s.TLDs {
		if err := b.addTLD(e); err != nil {
			return nil, fmt.Errorf("snapshot tld: %w", err)
		}
	}
	for _, e := range s.Suffixes {
		rec, err := b.trie.InsertSuffix(e.Suffix, e.Public)
		if err != nil {
			return nil, fmt.Errorf("snapshot suffix: %w", err)
		}
		if rec.TLD().Suffix != e.TLD {
			return nil, fmt.Errorf("snapshot suffix %q owned by %q, want %q: %w",
				e.Suffix, rec.TLD().Suffix, e.TLD, ErrInvariantViolation)
		}
	}

	m := make(map[string]string, len(s.Punycode))
	for _, p := range s.Punycode {
		if _, ok := b.tlds[p.Unicode]; !ok {
			return nil, fmt.Errorf("snapshot punycode %q -> %q: %w", p.ACE, p.Unicode, ErrUnknownTLD)
		}
		m[p.ACE] = p.Unicode
	}
	return newRegistry(b.trie, b.tlds, label.NewPunycodeIndex(m)), nil
}
