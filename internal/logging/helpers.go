package logging

import (
	"log/slog"
	"time"
)

// Common field helpers for consistent structured logging

// Duration logs duration in milliseconds
func Duration(name string, d time.Duration) slog.Attr {
	return slog.Int64(name+"_ms", d.Milliseconds())
}

// Err creates error field
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Count creates count field
func Count(name string, count int) slog.Attr {
	return slog.Int(name+"_count", count)
}

// HTTP creates HTTP request fields
func HTTP(method, path string, status int) []any {
	return []any{
		slog.String("http_method", method),
		slog.String("http_path", path),
		slog.Int("http_status", status),
	}
}

// TLD creates top-level domain field
func TLD(label string) slog.Attr {
	return slog.String("tld", label)
}

// Suffix creates public suffix field
func Suffix(suffix string) slog.Attr {
	return slog.String("suffix", suffix)
}

// Source creates feed source field (URL or path)
func Source(src string) slog.Attr {
	return slog.String("source", src)
}

// File creates file path field
func File(path string) slog.Attr {
	return slog.String("file", path)
}

// Dialect creates SQL dialect field
func Dialect(name string) slog.Attr {
	return slog.String("dialect", name)
}
