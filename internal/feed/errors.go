package feed

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrFormat matches every *ParseError. Feed schema violations are fatal
	// to registry construction.
	ErrFormat = errors.New("unexpected feed format")

	// ErrUnexpectedStatus is returned for a non-200 HTTP response.
	ErrUnexpectedStatus = errors.New("unexpected http status")
)

// ParseError describes a feed that does not look the way it should
type ParseError struct {
	Source   string    `json:"source"`
	Line     int       `json:"line,omitempty"`
	Field    string    `json:"field,omitempty"`
	Value    string    `json:"value,omitempty"`
	Cause    error     `json:"cause,omitempty"`
	Message  string    `json:"message"`
	Occurred time.Time `json:"occurred"`
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s %q", msg, e.Field, e.Value)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error at %s:%d: %s", e.Source, e.Line, msg)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Source, msg)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrFormat) hold for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrFormat
}

// NewParseError creates a new ParseError with context
func NewParseError(source string, line int, message string) *ParseError {
	return &ParseError{
		Source:   source,
		Line:     line,
		Message:  message,
		Occurred: time.Now(),
	}
}

// NewParseErrorWithCause creates a new ParseError with an underlying cause
func NewParseErrorWithCause(source string, line int, message string, cause error) *ParseError {
	e := NewParseError(source, line, message)
	e.Cause = cause
	return e
}

// NewFieldParseError creates a ParseError for a specific field
func NewFieldParseError(source string, line int, field, value, message string) *ParseError {
	e := NewParseError(source, line, message)
	e.Field = field
	e.Value = value
	return e
}

// FetchError wraps a failure to retrieve a feed
type FetchError struct {
	Name     string    `json:"name"`
	Op       string    `json:"operation"` // "open", "get", "read"
	Status   int       `json:"status,omitempty"`
	Cause    error     `json:"cause,omitempty"`
	Occurred time.Time `json:"occurred"`
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s %s: status %d", e.Op, e.Name, e.Status)
	}
	return fmt.Sprintf("fetch %s %s: %v", e.Op, e.Name, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewFetchError creates a new FetchError
func NewFetchError(name, op string, cause error) *FetchError {
	return &FetchError{
		Name:     name,
		Op:       op,
		Cause:    cause,
		Occurred: time.Now(),
	}
}
