package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps slog with configuration and file rotation
type Logger struct {
	mu     sync.Mutex
	config *Config
	file   io.WriteCloser
	logger *slog.Logger
}

// Config holds logging configuration
type Config struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	File       string `yaml:"file"`        // log file path (optional)
	MaxSize    int    `yaml:"max_size"`    // megabytes
	MaxBackups int    `yaml:"max_backups"` // number of old log files to keep
	MaxAge     int    `yaml:"max_age"`     // days
	Console    bool   `yaml:"console"`     // also log to stderr
	JSON       bool   `yaml:"json"`        // JSON format instead of text

	// Output replaces the console writer when set. Not read from YAML.
	Output io.Writer `yaml:"-"`
}

// DefaultConfig returns console logging at info level
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     28,
		Console:    true,
	}
}

var (
	globalMu     sync.Mutex
	globalLogger *Logger
)

// Initialize sets up the global logger
func Initialize(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &Logger{config: cfg}
	if err := l.configure(); err != nil {
		return err
	}

	globalMu.Lock()
	prev := globalLogger
	globalLogger = l
	globalMu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// GetLogger returns the global logger, creating a console logger on first use
func GetLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		globalLogger = &Logger{config: DefaultConfig()}
		_ = globalLogger.configure()
	}
	return globalLogger
}

func (l *Logger) configure() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	level := parseLevel(l.config.Level)

	var writers []io.Writer
	if l.config.Output != nil {
		writers = append(writers, l.config.Output)
	} else if l.config.Console {
		// stdout belongs to command output
		writers = append(writers, os.Stderr)
	}

	if l.config.File != "" {
		if l.file != nil {
			l.file.Close()
		}

		rotator := &lumberjack.Logger{
			Filename:   l.config.File,
			MaxSize:    l.config.MaxSize,
			MaxBackups: l.config.MaxBackups,
			MaxAge:     l.config.MaxAge,
			Compress:   true,
		}
		l.file = rotator
		writers = append(writers, rotator)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stderr
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if l.config.JSON {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	l.logger = slog.New(handler)
	slog.SetDefault(l.logger)

	return nil
}

// parseLevel converts string level to slog.Level
func parseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether s names a level parseLevel understands
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// Reload reconfigures the logger with new settings
func (l *Logger) Reload(cfg *Config) error {
	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()
	return l.configure()
}

// Close closes the rotated log file, if any
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	l.mu.Lock()
	logger := l.logger
	l.mu.Unlock()
	logger.Log(context.Background(), level, msg, args...)
}

// Package-level functions log through the global logger.

// Debug logs at debug level
func Debug(msg string, args ...any) { GetLogger().log(slog.LevelDebug, msg, args...) }

// Info logs at info level
func Info(msg string, args ...any) { GetLogger().log(slog.LevelInfo, msg, args...) }

// Infof logs a formatted message at info level
func Infof(format string, v ...any) { GetLogger().log(slog.LevelInfo, fmt.Sprintf(format, v...)) }

// Warn logs at warn level
func Warn(msg string, args ...any) { GetLogger().log(slog.LevelWarn, msg, args...) }

// Error logs at error level
func Error(msg string, args ...any) { GetLogger().log(slog.LevelError, msg, args...) }

// Errorf logs a formatted message at error level
func Errorf(format string, v ...any) { GetLogger().log(slog.LevelError, fmt.Sprintf(format, v...)) }

// Fatal logs at error level and exits
func Fatal(msg string, args ...any) {
	GetLogger().log(slog.LevelError, msg, args...)
	os.Exit(1)
}

// WithError returns a logger carrying err
func WithError(err error) *slog.Logger {
	l := GetLogger()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logger.With(Err(err))
}
