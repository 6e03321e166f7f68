package label

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIsACE(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"xn--kput3i", true},
		{"XN--KPUT3I", true},
		{"xn--", false},
		{"com", false},
		{"手机", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsACE(tt.label); got != tt.want {
			t.Errorf("IsACE(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestSplitReverse(t *testing.T) {
	if got := Split(""); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}

	labels := Split("a.b.co.uk")
	if diff := cmp.Diff([]string{"a", "b", "co", "uk"}, labels); diff != "" {
		t.Errorf("Split mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"uk", "co", "b", "a"}, Reverse(labels)); diff != "" {
		t.Errorf("Reverse mismatch (-want +got):\n%s", diff)
	}
	if labels[0] != "a" {
		t.Error("Reverse modified its input")
	}
}

func TestToUnicode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"xn--kput3i", "手机"},
		{"xn--p1ai", "рф"},
		{"com", "com"},
	}

	for _, tt := range tests {
		got, err := ToUnicode(tt.in)
		if err != nil {
			t.Fatalf("ToUnicode(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ToUnicode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTransliterate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"com", "com"},
		{"рф", "rf"},
		{"ελ", "el"},
	}

	for _, tt := range tests {
		if got := Transliterate(tt.in); got != tt.want {
			t.Errorf("Transliterate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestASCIIifyPuny(t *testing.T) {
	got, err := ASCIIifyPuny("xn--p1ai")
	if err != nil {
		t.Fatalf("ASCIIifyPuny error: %v", err)
	}
	if got != "rf" {
		t.Errorf("ASCIIifyPuny(xn--p1ai) = %q, want rf", got)
	}
}

func TestPunycodeIndex(t *testing.T) {
	idx := NewPunycodeIndex(map[string]string{"xn--kput3i": "手机", "XN--P1AI": "рф"})

	tests := []struct {
		in   string
		want string
	}{
		{"xn--kput3i", "手机"},
		{"xn--p1ai", "рф"},
		{"xn--unknown", "xn--unknown"},
		{"com", "com"},
		{"手机", "手机"},
	}
	for _, tt := range tests {
		if got := idx.Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}

	want := []Entry{{ACE: "xn--kput3i", Unicode: "手机"}, {ACE: "xn--p1ai", Unicode: "рф"}}
	if diff := cmp.Diff(want, idx.Entries()); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}

	var nilIdx *PunycodeIndex
	if got := nilIdx.Canonical("xn--kput3i"); got != "xn--kput3i" {
		t.Errorf("nil index Canonical = %q", got)
	}
}
