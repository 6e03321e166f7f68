package domain

import (
	"errors"
	"testing"
)

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"  Example.COM.  ", "example.com"},
		{"https://user:pw@www.example.com:8443/path?q=1#f", "www.example.com"},
		{"bbs.fido.net:24554", "bbs.fido.net"},
		{"[::1]:8080", "::1"},
		{"[2a01:8840:d5::1]", "2a01:8840:d5::1"},
		{"2a01:8840:d5:0:0:0:0:1", "2a01:8840:d5:0:0:0:0:1"},
		{"10.0.0.1:53", "10.0.0.1"},
		{"Straße.DE", "straße.de"},
		{"XN--P1AI", "xn--p1ai"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeHost(tt.in)
			if err != nil {
				t.Fatalf("NormalizeHost(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeHost(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeHostEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", ".", "https://", "[]"} {
		if _, err := NormalizeHost(in); !errors.Is(err, ErrEmptyHost) {
			t.Errorf("NormalizeHost(%q) err = %v, want ErrEmptyHost", in, err)
		}
	}
}
