// Package label holds helpers for individual DNS labels: recognising the
// punycode ACE form, mapping ACE top-level labels back to their Unicode form
// and producing display-only ASCII approximations.
package label

import (
	"sort"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// ACEPrefix marks a label as punycode (ASCII Compatible Encoding).
const ACEPrefix = "xn--"

// IsACE reports whether label is in punycode form.
func IsACE(label string) bool {
	return len(label) > len(ACEPrefix) && strings.EqualFold(label[:len(ACEPrefix)], ACEPrefix)
}

// Split breaks a dotted name into labels. An empty name yields no labels.
func Split(name string) []string {
	if name == "" {
		return nil
	}
	return strings.Split(name, ".")
}

// Reverse returns labels in right-to-left order as a new slice.
func Reverse(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[len(labels)-1-i] = l
	}
	return out
}

// ToUnicode decodes a punycode label or dotted name. Non-ACE input is
// returned unchanged.
func ToUnicode(ace string) (string, error) {
	return idna.Punycode.ToUnicode(ace)
}

// Transliterate returns a best-effort ASCII approximation of s. The result
// is for display only and cannot be mapped back.
func Transliterate(s string) string {
	return unidecode.Unidecode(norm.NFKC.String(s))
}

// ASCIIifyPuny decodes an ACE label and transliterates the result.
func ASCIIifyPuny(ace string) (string, error) {
	u, err := ToUnicode(ace)
	if err != nil {
		return "", err
	}
	return Transliterate(u), nil
}

// PunycodeIndex maps ACE top-level labels to their canonical Unicode form.
// It is read-only once built.
type PunycodeIndex struct {
	m map[string]string
}

// NewPunycodeIndex copies m into a new index. Keys are matched case-insensitively.
func NewPunycodeIndex(m map[string]string) *PunycodeIndex {
	idx := &PunycodeIndex{m: make(map[string]string, len(m))}
	for ace, u := range m {
		idx.m[strings.ToLower(ace)] = u
	}
	return idx
}

// Lookup returns the Unicode label for ace.
func (p *PunycodeIndex) Lookup(ace string) (string, bool) {
	if p == nil {
		return "", false
	}
	u, ok := p.m[strings.ToLower(ace)]
	return u, ok
}

// Canonical returns the Unicode form of a known ACE label and any other
// label unchanged.
func (p *PunycodeIndex) Canonical(l string) string {
	if !IsACE(l) {
		return l
	}
	if u, ok := p.Lookup(l); ok {
		return u
	}
	return l
}

// Len returns the number of aliases.
func (p *PunycodeIndex) Len() int {
	if p == nil {
		return 0
	}
	return len(p.m)
}

// Entry is one ACE to Unicode alias.
type Entry struct {
	ACE     string `json:"ace"`
	Unicode string `json:"unicode"`
}

// Entries returns the aliases sorted by ACE label.
func (p *PunycodeIndex) Entries() []Entry {
	if p == nil {
		return nil
	}
	out := make([]Entry, 0, len(p.m))
	for ace, u := range p.m {
		out = append(out, Entry{ACE: ace, Unicode: u})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ACE < out[j].ACE })
	return out
}
