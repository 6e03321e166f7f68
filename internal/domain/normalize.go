package domain

import (
	"errors"
	"net"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrEmptyHost is returned when nothing is left of the input after cleanup.
var ErrEmptyHost = errors.New("empty host")

// NormalizeHost prepares user input for Parse. It trims whitespace, drops a
// URL scheme, path, userinfo and port, removes IPv6 brackets and the trailing
// root dot, and lower-cases the result. ACE labels are kept as they are.
func NormalizeHost(raw string) (string, error) {
	host := strings.TrimSpace(raw)

	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}

	// Strip port (handles both "host:port" and "[::1]:port")
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")

	host = strings.TrimRight(host, ".")
	if host == "" {
		return "", ErrEmptyHost
	}

	// A Caser carries state, so one per call.
	return cases.Lower(language.Und).String(host), nil
}
