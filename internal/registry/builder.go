package registry

import (
	"fmt"
	"strings"
	"time"

	"github.com/domainsuffixes/internal/label"
	"github.com/domainsuffixes/internal/logging"
	"github.com/domainsuffixes/internal/trie"
)

type builder struct {
	trie *trie.Trie
	tlds map[string]*trie.TLDRecord

	publicSuffixes  int
	privateSuffixes int
	orphans         int
}

// Build constructs a registry from feed. It fails on the first schema or
// invariant violation and never returns a partially built registry.
func Build(feed *Feed) (*Registry, error) {
	start := time.Now()
	b := &builder{
		trie: trie.New(),
		tlds: make(map[string]*trie.TLDRecord, len(feed.TLDs)+len(feed.Manual)),
	}

	for i, e := range feed.TLDs {
		if err := b.addTLD(e); err != nil {
			return nil, fmt.Errorf("tld entry %d: %w", i, err)
		}
	}

	for _, e := range feed.Manual {
		if _, ok := b.tlds[e.Suffix]; ok {
			logging.Warn("manual tld already present, skipping", logging.TLD(e.Suffix))
			continue
		}
		if err := b.addTLD(e); err != nil {
			return nil, fmt.Errorf("manual tld %q: %w", e.Suffix, err)
		}
	}

	if err := b.addSuffixLines(feed.SuffixLines); err != nil {
		return nil, err
	}

	puny := b.punycodeIndex()

	for _, e := range feed.Enrichment {
		if err := b.enrich(e); err != nil {
			return nil, err
		}
	}

	r := newRegistry(b.trie, b.tlds, puny)
	logging.Info("registry built",
		logging.Count("tld", len(b.tlds)),
		logging.Count("public_suffix", b.publicSuffixes),
		logging.Count("private_suffix", b.privateSuffixes),
		logging.Count("orphan_tld", b.orphans),
		logging.Count("punycode", puny.Len()),
		logging.Duration("build", time.Since(start)))
	return r, nil
}

func (b *builder) addTLD(e TLDEntry) error {
	if e.Suffix == "" {
		return fmt.Errorf("empty suffix: %w", ErrInvalidEntry)
	}
	if _, ok := trie.ParseTLDType(string(e.Type)); !ok {
		return fmt.Errorf("tld %q has type %q: %w", e.Suffix, e.Type, ErrInvalidEntry)
	}
	if e.Punycode != "" && !label.IsACE(e.Punycode) {
		return fmt.Errorf("tld %q has punycode alias %q: %w", e.Suffix, e.Punycode, ErrInvalidEntry)
	}
	if _, ok := b.tlds[e.Suffix]; ok {
		return fmt.Errorf("tld %q: %w", e.Suffix, ErrDuplicateMetadata)
	}

	rec := e.record()
	if err := b.trie.Insert(e.Suffix, rec); err != nil {
		return err
	}
	b.tlds[e.Suffix] = rec
	return nil
}

// addSuffixLines processes the public suffix list in order.
func (b *builder) addSuffixLines(lines []string) error {
	public := true
	punyHint := ""

	for i, raw := range lines {
		line := strings.TrimSpace(raw)

		switch {
		case line == PrivateMarker:
			public = false
			punyHint = ""
			continue
		case line == "":
			punyHint = ""
			continue
		case strings.HasPrefix(line, "//"):
			if hint, ok := punycodeHint(line); ok {
				punyHint = hint
			}
			continue
		case strings.HasPrefix(line, "!"):
			// Exception rules mark names that are not suffixes.
			punyHint = ""
			continue
		}

		suffix := strings.TrimPrefix(line, "*.")

		if strings.Contains(suffix, ".") {
			if err := b.addSuffix(suffix, public); err != nil {
				return fmt.Errorf("suffix list line %d: %w", i+1, err)
			}
		} else if _, ok := b.trie.GetNode([]string{suffix}); !ok {
			b.addOrphan(suffix, punyHint)
		}
		punyHint = ""
	}
	return nil
}

func (b *builder) addSuffix(suffix string, public bool) error {
	m := b.trie.LongestMatch(suffix, nil)
	if rec, ok := m.Meta.(*trie.SuffixRecord); ok && len(m.Residual) == 0 {
		// Wildcard stripping can yield a suffix listed elsewhere.
		logging.Debug("duplicate suffix, keeping first", logging.Suffix(rec.Suffix))
		return nil
	}

	if _, err := b.trie.InsertSuffix(suffix, public); err != nil {
		return err
	}
	if public {
		b.publicSuffixes++
	} else {
		b.privateSuffixes++
	}
	return nil
}

// addOrphan inserts a country-code TLD that only the suffix list knows.
func (b *builder) addOrphan(suffix, puny string) {
	logging.Warn("tld missing from root zone, adding from suffix list", logging.TLD(suffix))
	rec := &trie.TLDRecord{
		Suffix:   suffix,
		Punycode: puny,
		Type:     trie.TypeCountryCode,
	}
	// The node is known to be absent, so Insert cannot fail.
	_ = b.trie.Insert(suffix, rec)
	b.tlds[suffix] = rec
	b.orphans++
}

// punycodeHint extracts the ACE label from a comment such as
// "// xn--mgbaam7a8h ("Emerat", Arabic) : AE".
func punycodeHint(comment string) (string, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(comment, "//"))
	if !label.IsACE(rest) {
		return "", false
	}
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		rest = rest[:i]
	}
	return rest, true
}

func (b *builder) punycodeIndex() *label.PunycodeIndex {
	m := make(map[string]string)
	for _, top := range b.trie.TopLevel() {
		rec, ok := b.tlds[top]
		if !ok || rec.Punycode == "" {
			continue
		}
		m[rec.Punycode] = rec.Suffix
	}
	return label.NewPunycodeIndex(m)
}

func (b *builder) enrich(e Enrichment) error {
	rec, ok := b.tlds[e.TLD]
	if !ok {
		return fmt.Errorf("enrich %q: %w", e.TLD, ErrUnknownTLD)
	}
	rec.Enrich(e.RegistryOperator, e.Created)
	return nil
}
