package trie

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/domainsuffixes/internal/label"
)

func newTestTrie(t *testing.T) *Trie {
	t.Helper()

	tr := New()
	for _, rec := range []*TLDRecord{
		{Suffix: "com", Type: TypeGeneric, Registry: "VeriSign Global Registry Services"},
		{Suffix: "uk", Type: TypeCountryCode},
		{Suffix: "jp", Type: TypeCountryCode},
		{Suffix: "手机", Punycode: "xn--kput3i", Type: TypeGeneric},
	} {
		if err := tr.Insert(rec.Suffix, rec); err != nil {
			t.Fatalf("Insert(%q): %v", rec.Suffix, err)
		}
	}
	for _, s := range []struct {
		suffix string
		public bool
	}{
		{"co.uk", true},
		{"tokyo.jp", true},
		{"blogspot.co.uk", false},
	} {
		if _, err := tr.InsertSuffix(s.suffix, s.public); err != nil {
			t.Fatalf("InsertSuffix(%q): %v", s.suffix, err)
		}
	}
	return tr
}

func testIndex() *label.PunycodeIndex {
	return label.NewPunycodeIndex(map[string]string{"xn--kput3i": "手机"})
}

func TestLongestMatch(t *testing.T) {
	tr := newTestTrie(t)
	idx := testIndex()

	tests := []struct {
		fqdn     string
		suffix   string
		residual []string
	}{
		{"stuff.com", "com", []string{"stuff"}},
		{"a.b.stuff.com", "com", []string{"a", "b", "stuff"}},
		{"stuff.co.uk", "co.uk", []string{"stuff"}},
		{"stuff.uk", "uk", []string{"stuff"}},
		{"x.blogspot.co.uk", "blogspot.co.uk", []string{"x"}},
		{"foo.notreal.co.uk", "co.uk", []string{"foo", "notreal"}},
		{"foo.notreal.uk", "uk", []string{"foo", "notreal"}},
		{"test.costco.api.someservice.tokyo.jp", "tokyo.jp", []string{"test", "costco", "api", "someservice"}},
		{"stuff.手机", "手机", []string{"stuff"}},
		{"stuff.xn--kput3i", "手机", []string{"stuff"}},
		{"co.uk", "co.uk", []string{}},
		{"com", "com", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.fqdn, func(t *testing.T) {
			m := tr.LongestMatch(tt.fqdn, idx)
			if !m.Found() {
				t.Fatalf("LongestMatch(%q) found nothing, want %q", tt.fqdn, tt.suffix)
			}
			if got := m.Meta.SuffixName(); got != tt.suffix {
				t.Errorf("LongestMatch(%q) suffix = %q, want %q", tt.fqdn, got, tt.suffix)
			}
			if diff := cmp.Diff(tt.residual, m.Residual); diff != "" {
				t.Errorf("LongestMatch(%q) residual mismatch (-want +got):\n%s", tt.fqdn, diff)
			}
			if m.Depth+len(m.Residual) != len(label.Split(tt.fqdn)) {
				t.Errorf("LongestMatch(%q) depth %d + residual %d != label count", tt.fqdn, m.Depth, len(m.Residual))
			}
		})
	}
}

func TestLongestMatchNotFound(t *testing.T) {
	tr := newTestTrie(t)
	idx := testIndex()

	for _, fqdn := range []string{"", "stuff.nottld", "costco.commmm", "stuff.xn--unknown", "localhost"} {
		if m := tr.LongestMatch(fqdn, idx); m.Found() {
			t.Errorf("LongestMatch(%q) = %q, want not found", fqdn, m.Meta.SuffixName())
		}
	}
}

func TestLongestMatchNilIndex(t *testing.T) {
	tr := newTestTrie(t)

	if m := tr.LongestMatch("stuff.xn--kput3i", nil); m.Found() {
		t.Errorf("ACE label matched without an index: %q", m.Meta.SuffixName())
	}
	if m := tr.LongestMatch("stuff.手机", nil); !m.Found() {
		t.Error("Unicode label did not match without an index")
	}
}

func TestMetadataKinds(t *testing.T) {
	tr := newTestTrie(t)

	m := tr.LongestMatch("stuff.co.uk", nil)
	rec, ok := m.Meta.(*SuffixRecord)
	if !ok {
		t.Fatalf("co.uk metadata is %T, want *SuffixRecord", m.Meta)
	}
	if !rec.Public {
		t.Error("co.uk should be public")
	}
	if rec.TLD() == nil || rec.TLD().Suffix != "uk" {
		t.Errorf("co.uk owner = %+v, want uk", rec.TLD())
	}

	m = tr.LongestMatch("stuff.com", nil)
	if _, ok := m.Meta.(*TLDRecord); !ok {
		t.Fatalf("com metadata is %T, want *TLDRecord", m.Meta)
	}

	m = tr.LongestMatch("x.blogspot.co.uk", nil)
	if rec := m.Meta.(*SuffixRecord); rec.Public {
		t.Error("blogspot.co.uk should be private")
	}
}

func TestInsertSuffixRequiresTLD(t *testing.T) {
	tr := newTestTrie(t)

	_, err := tr.InsertSuffix("co.nottld", true)
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("InsertSuffix under unknown tld: err = %v, want ErrInvariantViolation", err)
	}
	if _, ok := tr.GetNode([]string{"nottld"}); ok {
		t.Error("failed insert left nodes behind")
	}

	// "bar" exists as a node but carries no record.
	if err := tr.Insert("foo.bar", &TLDRecord{Suffix: "foo.bar"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := tr.InsertSuffix("x.bar", true); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("err = %v, want ErrInvariantViolation", err)
	}
}

func TestInsertIdempotent(t *testing.T) {
	tr := newTestTrie(t)

	first := tr.LongestMatch("stuff.co.uk", nil).Meta
	again, err := tr.InsertSuffix("co.uk", true)
	if err != nil {
		t.Fatalf("re-insert: %v", err)
	}
	if again != first {
		t.Error("re-insert created a new record")
	}
	if got := tr.LongestMatch("stuff.co.uk", nil).Meta; got != first {
		t.Error("re-insert changed lookup result")
	}

	com := tr.LongestMatch("x.com", nil).Meta.(*TLDRecord)
	if err := tr.Insert("com", com); err != nil {
		t.Errorf("re-inserting same tld record: %v", err)
	}
}

func TestInsertDuplicateMetadata(t *testing.T) {
	tr := newTestTrie(t)

	if err := tr.Insert("com", &TLDRecord{Suffix: "com"}); !errors.Is(err, ErrDuplicateMetadata) {
		t.Errorf("Insert duplicate tld: err = %v, want ErrDuplicateMetadata", err)
	}
	if _, err := tr.InsertSuffix("co.uk", false); !errors.Is(err, ErrDuplicateMetadata) {
		t.Errorf("InsertSuffix with other visibility: err = %v, want ErrDuplicateMetadata", err)
	}
	if _, err := tr.InsertSuffix("uk", true); !errors.Is(err, ErrDuplicateMetadata) {
		t.Errorf("InsertSuffix over tld: err = %v, want ErrDuplicateMetadata", err)
	}

	rec := tr.LongestMatch("stuff.co.uk", nil).Meta.(*SuffixRecord)
	if !rec.Public {
		t.Error("failed insert altered existing record")
	}
}

func TestInsertEmpty(t *testing.T) {
	tr := New()
	if err := tr.Insert("", &TLDRecord{}); !errors.Is(err, ErrEmptySuffix) {
		t.Errorf("Insert(\"\") err = %v", err)
	}
	if err := tr.Insert("a..b", &TLDRecord{}); !errors.Is(err, ErrEmptySuffix) {
		t.Errorf("Insert(\"a..b\") err = %v", err)
	}
}

func TestGetNode(t *testing.T) {
	tr := newTestTrie(t)

	tests := []struct {
		labels []string
		want   string
		found  bool
	}{
		{[]string{"uk", "co"}, "co", true},
		{[]string{"uk", "co", "nothing"}, "co", true},
		{[]string{"uk", "nothing", "co"}, "uk", true},
		{[]string{"nottld"}, "", false},
		{nil, "", false},
	}

	for _, tt := range tests {
		n, ok := tr.GetNode(tt.labels)
		if ok != tt.found {
			t.Errorf("GetNode(%v) found = %v, want %v", tt.labels, ok, tt.found)
			continue
		}
		if ok && n.Label() != tt.want {
			t.Errorf("GetNode(%v) = %q, want %q", tt.labels, n.Label(), tt.want)
		}
	}
}

func TestTopLevelAndWalk(t *testing.T) {
	tr := newTestTrie(t)

	if diff := cmp.Diff([]string{"com", "jp", "uk", "手机"}, tr.TopLevel()); diff != "" {
		t.Errorf("TopLevel mismatch (-want +got):\n%s", diff)
	}

	var seen []string
	err := tr.Walk(func(m Metadata) error {
		seen = append(seen, m.SuffixName())
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{"com", "jp", "tokyo.jp", "uk", "co.uk", "blogspot.co.uk", "手机"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("Walk order mismatch (-want +got):\n%s", diff)
	}

	stop := errors.New("stop")
	n := 0
	if err := tr.Walk(func(Metadata) error { n++; return stop }); err != stop || n != 1 {
		t.Errorf("Walk did not stop on error: err=%v visits=%d", err, n)
	}
}

func TestEnrich(t *testing.T) {
	created := time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		registry string
		operator string
		want     string
	}{
		{"empty registry", "", "VeriSign", "VeriSign"},
		{"same operator", "VeriSign", "VeriSign", "VeriSign"},
		{"different operator", "VeriSign Global Registry Services", "VeriSign", "VeriSign Global Registry Services; VeriSign"},
		{"no operator", "VeriSign", "", "VeriSign"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &TLDRecord{Suffix: "com", Registry: tt.registry}
			rec.Enrich(tt.operator, &created)
			if rec.Registry != tt.want {
				t.Errorf("Registry = %q, want %q", rec.Registry, tt.want)
			}
			if rec.Created == nil || !rec.Created.Equal(created) {
				t.Errorf("Created = %v, want %v", rec.Created, created)
			}
		})
	}
}

func TestParseTLDType(t *testing.T) {
	if got, ok := ParseTLDType("country-code"); !ok || got != TypeCountryCode {
		t.Errorf("ParseTLDType(country-code) = %q, %v", got, ok)
	}
	if _, ok := ParseTLDType("planetary"); ok {
		t.Error("ParseTLDType accepted unknown type")
	}
}
