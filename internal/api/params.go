package api

import (
	"net/url"
	"strings"

	"github.com/domainsuffixes/internal/domain"
	"github.com/domainsuffixes/internal/trie"
)

// maxHostLength bounds the host query parameter.
const maxHostLength = 1024

// parseBoolParam parses a boolean parameter from query string.
// Returns the value and whether it was present.
// Accepts: true/false, 1/0, yes/no (case-insensitive).
func parseBoolParam(query url.Values, key string) (bool, bool, error) {
	val := query.Get(key)
	if val == "" {
		return false, false, nil
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes":
		return true, true, nil
	case "false", "0", "no":
		return false, true, nil
	}
	return false, true, &ParamError{
		Field:   key,
		Value:   val,
		Message: key + " must be true or false",
	}
}

// parseHostParam reads the host parameter. Unless raw is set the value is
// passed through domain.NormalizeHost.
func parseHostParam(query url.Values) (string, error) {
	val := strings.TrimSpace(query.Get("host"))
	if val == "" {
		return "", &ParamError{Field: "host", Message: "host parameter is required"}
	}
	if len(val) > maxHostLength {
		return "", &ParamError{Field: "host", Value: val[:32] + "...", Message: "host parameter is too long"}
	}

	raw, _, err := parseBoolParam(query, "raw")
	if err != nil {
		return "", err
	}
	if raw {
		return val, nil
	}

	host, err := domain.NormalizeHost(val)
	if err != nil {
		return "", &ParamError{Field: "host", Value: val, Message: "host parameter is empty after normalization"}
	}
	return host, nil
}

// parseParseOptions reads skip_ip_check and strip_protocol.
func parseParseOptions(query url.Values) (domain.Options, error) {
	var opts domain.Options
	var err error
	if opts.SkipIPCheck, _, err = parseBoolParam(query, "skip_ip_check"); err != nil {
		return opts, err
	}
	if opts.StripProtocol, _, err = parseBoolParam(query, "strip_protocol"); err != nil {
		return opts, err
	}
	return opts, nil
}

// parseTypeParam reads an optional TLD type filter.
func parseTypeParam(query url.Values) (trie.TLDType, bool, error) {
	val := strings.TrimSpace(query.Get("type"))
	if val == "" {
		return "", false, nil
	}
	t, ok := trie.ParseTLDType(strings.ToLower(val))
	if !ok {
		return "", true, &ParamError{Field: "type", Value: val, Message: "unknown TLD type " + val}
	}
	return t, true, nil
}

// ParamError represents a parameter parsing error.
type ParamError struct {
	Field   string
	Value   string
	Message string
}

func (e *ParamError) Error() string {
	return e.Message
}
