package trie

import "errors"

var (
	// ErrInvariantViolation is returned when a suffix is inserted under a
	// top-level label that carries no TLD record.
	ErrInvariantViolation = errors.New("suffix has no tld record")

	// ErrDuplicateMetadata is returned when a node already carries metadata.
	ErrDuplicateMetadata = errors.New("node already carries metadata")

	// ErrEmptySuffix is returned for an empty suffix string.
	ErrEmptySuffix = errors.New("empty suffix")
)
