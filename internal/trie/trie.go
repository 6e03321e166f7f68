// Package trie implements the reversed-label suffix tree used to resolve a
// host name to its longest known suffix.
//
// Labels are stored right to left, so "co.uk" is the path root -> "uk" ->
// "co". Only nodes that stand for a real TLD or a registered public/private
// suffix carry Metadata. A Trie is built by a single goroutine and must not be
// mutated once it is shared; all read methods are safe for concurrent use
// after that point.
package trie

import (
	"fmt"
	"sort"

	"github.com/domainsuffixes/internal/label"
)

// Node is one label in the tree.
type Node struct {
	label    string
	children map[string]*Node
	meta     Metadata
}

func newNode(l string) *Node {
	return &Node{label: l}
}

// Label returns the label this node stands for. The root's label is empty.
func (n *Node) Label() string { return n.label }

// Meta returns the attached record or nil.
func (n *Node) Meta() Metadata { return n.meta }

// Child returns the child for l, if present.
func (n *Node) Child(l string) (*Node, bool) {
	c, ok := n.children[l]
	return c, ok
}

func (n *Node) sortedChildren() []*Node {
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Node, len(keys))
	for i, k := range keys {
		out[i] = n.children[k]
	}
	return out
}

// Trie is the suffix tree.
type Trie struct {
	root *Node
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: newNode("")}
}

// find walks reversed labels without creating nodes and returns the node for
// the full path, or nil.
func (t *Trie) find(rev []string) *Node {
	n := t.root
	for _, l := range rev {
		c, ok := n.children[l]
		if !ok {
			return nil
		}
		n = c
	}
	return n
}

// path walks reversed labels, creating missing nodes.
func (t *Trie) path(rev []string) *Node {
	n := t.root
	for _, l := range rev {
		c, ok := n.children[l]
		if !ok {
			c = newNode(l)
			if n.children == nil {
				n.children = make(map[string]*Node)
			}
			n.children[l] = c
		}
		n = c
	}
	return n
}

func reversedLabels(suffix string) ([]string, error) {
	if suffix == "" {
		return nil, ErrEmptySuffix
	}
	rev := label.Reverse(label.Split(suffix))
	for _, l := range rev {
		if l == "" {
			return nil, fmt.Errorf("suffix %q: %w", suffix, ErrEmptySuffix)
		}
	}
	return rev, nil
}

// Insert attaches a TLD record to the node for suffix. Inserting the same
// record again is a no-op; any other metadata already on the node yields
// ErrDuplicateMetadata and leaves the trie unchanged.
func (t *Trie) Insert(suffix string, rec *TLDRecord) error {
	rev, err := reversedLabels(suffix)
	if err != nil {
		return err
	}
	if n := t.find(rev); n != nil && n.meta != nil {
		if existing, ok := n.meta.(*TLDRecord); ok && existing == rec {
			return nil
		}
		return fmt.Errorf("insert tld %q: %w", suffix, ErrDuplicateMetadata)
	}
	t.path(rev).meta = rec
	return nil
}

// InsertSuffix attaches a SuffixRecord for a public or private suffix. The
// top-level label must already carry a TLD record. Re-inserting a suffix with
// the same visibility returns the existing record.
func (t *Trie) InsertSuffix(suffix string, public bool) (*SuffixRecord, error) {
	rev, err := reversedLabels(suffix)
	if err != nil {
		return nil, err
	}

	top, ok := t.root.children[rev[0]]
	if !ok {
		return nil, fmt.Errorf("suffix %q: %w", suffix, ErrInvariantViolation)
	}
	tld, ok := top.meta.(*TLDRecord)
	if !ok {
		return nil, fmt.Errorf("suffix %q: %w", suffix, ErrInvariantViolation)
	}

	if n := t.find(rev); n != nil && n.meta != nil {
		if existing, ok := n.meta.(*SuffixRecord); ok && existing.Public == public {
			return existing, nil
		}
		return nil, fmt.Errorf("insert suffix %q: %w", suffix, ErrDuplicateMetadata)
	}

	rec := &SuffixRecord{Suffix: suffix, Public: public, tld: tld}
	t.path(rev).meta = rec
	return rec, nil
}

// GetNode walks labels, given right to left, as far as children exist and
// returns the deepest node reached. It reports false when not even the first
// label matched.
func (t *Trie) GetNode(labels []string) (*Node, bool) {
	n := t.root
	for _, l := range labels {
		c, ok := n.children[l]
		if !ok {
			break
		}
		n = c
	}
	if n == t.root {
		return nil, false
	}
	return n, true
}

// Match is the outcome of LongestMatch.
type Match struct {
	// Meta is the record of the deepest metadata-bearing node, nil when
	// nothing matched.
	Meta Metadata
	// Residual holds the labels left of the matched suffix, left to right.
	Residual []string
	// Depth is the number of labels the matched suffix spans.
	Depth int
}

// Found reports whether a suffix matched.
func (m Match) Found() bool { return m.Meta != nil }

// LongestMatch resolves fqdn to the deepest suffix known to the trie. An ACE
// top-level label is mapped through puny first; unknown ACE labels are left as
// they are and simply fail to match.
func (t *Trie) LongestMatch(fqdn string, puny *label.PunycodeIndex) Match {
	labels := label.Split(fqdn)
	if len(labels) == 0 {
		return Match{}
	}
	rev := label.Reverse(labels)
	rev[0] = puny.Canonical(rev[0])

	var (
		best  Metadata
		depth int
	)
	n := t.root
	for i, l := range rev {
		c, ok := n.children[l]
		if !ok {
			break
		}
		n = c
		if n.meta != nil {
			best = n.meta
			depth = i + 1
		}
	}
	if best == nil {
		return Match{}
	}

	residual := make([]string, len(labels)-depth)
	copy(residual, labels[:len(labels)-depth])
	return Match{Meta: best, Residual: residual, Depth: depth}
}

// TopLevel returns the sorted labels directly below the root.
func (t *Trie) TopLevel() []string {
	out := make([]string, 0, len(t.root.children))
	for k := range t.root.children {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Walk calls fn for every record in depth-first order, visiting siblings
// sorted by label. A parent is visited before its descendants, so every TLD
// record is seen before the suffixes below it. Walk stops at the first error.
func (t *Trie) Walk(fn func(Metadata) error) error {
	var visit func(*Node) error
	visit = func(n *Node) error {
		if n.meta != nil {
			if err := fn(n.meta); err != nil {
				return err
			}
		}
		for _, c := range n.sortedChildren() {
			if err := visit(c); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(t.root)
}
