package registry

import (
	"errors"

	"github.com/domainsuffixes/internal/trie"
)

var (
	// ErrInvariantViolation aliases the trie error so callers need one import.
	ErrInvariantViolation = trie.ErrInvariantViolation

	// ErrDuplicateMetadata aliases the trie error.
	ErrDuplicateMetadata = trie.ErrDuplicateMetadata

	// ErrUnknownTLD is returned when enrichment names a TLD the registry lacks.
	ErrUnknownTLD = errors.New("unknown tld")

	// ErrInvalidEntry is returned for a feed entry that breaks the feed schema.
	ErrInvalidEntry = errors.New("invalid feed entry")

	// ErrUnsupportedSnapshot is returned for a snapshot of an unknown version.
	ErrUnsupportedSnapshot = errors.New("unsupported snapshot version")
)
