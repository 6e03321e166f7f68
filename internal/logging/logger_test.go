package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitialize(t *testing.T) {
	if err := Initialize(nil); err != nil {
		t.Fatalf("Failed to initialize with default config: %v", err)
	}

	if GetLogger() == nil {
		t.Fatal("GetLogger returned nil")
	}

	err := Initialize(&Config{Level: "debug", Console: true})
	if err != nil {
		t.Fatalf("Failed to initialize with custom config: %v", err)
	}
}

func TestGetLogger(t *testing.T) {
	globalMu.Lock()
	globalLogger = nil
	globalMu.Unlock()

	logger := GetLogger()
	if logger == nil {
		t.Fatal("GetLogger returned nil")
	}

	if logger2 := GetLogger(); logger != logger2 {
		t.Error("GetLogger should return same instance")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{" info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level := parseLevel(tt.input)
			if level != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, level, tt.expected)
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	for _, s := range []string{"", "debug", "Info", "warning", "error"} {
		if !ValidLevel(s) {
			t.Errorf("ValidLevel(%q) = false, want true", s)
		}
	}
	if ValidLevel("verbose") {
		t.Error("ValidLevel(\"verbose\") = true, want false")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := Initialize(&Config{Level: "warn", Output: &buf}); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	Debug("hidden debug")
	Info("hidden info")
	Warn("visible warn", TLD("com"))
	Errorf("visible %s", "error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains filtered records: %s", out)
	}
	if !strings.Contains(out, "visible warn") || !strings.Contains(out, "tld=com") {
		t.Errorf("warn record missing: %s", out)
	}
	if !strings.Contains(out, "visible error") {
		t.Errorf("error record missing: %s", out)
	}
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	if err := Initialize(&Config{Level: "debug", JSON: true, Output: &buf}); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	WithError(errors.New("boom")).Info("with error", Count("tld", 3), Duration("build", 1500*time.Millisecond))

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("output is not a single JSON record: %v (%s)", err, buf.String())
	}
	if rec["error"] != "boom" {
		t.Errorf("error = %v, want boom", rec["error"])
	}
	if rec["tld_count"] != float64(3) {
		t.Errorf("tld_count = %v, want 3", rec["tld_count"])
	}
	if rec["build_ms"] != float64(1500) {
		t.Errorf("build_ms = %v, want 1500", rec["build_ms"])
	}
}

func TestFileLogging(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	if err := Initialize(&Config{Level: "info", File: logFile}); err != nil {
		t.Fatalf("Failed to initialize with file: %v", err)
	}

	Info("test message 1")
	Info("test message 2")

	if err := GetLogger().Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "test message 1") {
		t.Error("Log file doesn't contain expected message")
	}
}

func TestReload(t *testing.T) {
	var buf bytes.Buffer
	if err := Initialize(&Config{Level: "info", Output: &buf}); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	logger := GetLogger()
	if err := logger.Reload(&Config{Level: "debug", JSON: true, Output: &buf}); err != nil {
		t.Fatalf("Failed to reload: %v", err)
	}

	if logger.config.Level != "debug" {
		t.Error("Config level not updated")
	}

	Debug("after reload")
	if !strings.Contains(buf.String(), `"msg":"after reload"`) {
		t.Errorf("debug record not emitted as JSON after reload: %s", buf.String())
	}
}

func TestHelpers(t *testing.T) {
	if got := Err(nil); got.Value.String() != "" {
		t.Errorf("Err(nil) = %q, want empty", got.Value.String())
	}
	if got := Source("https://example.test/list"); got.Key != "source" {
		t.Errorf("Source key = %q", got.Key)
	}
	if got := HTTP("GET", "/api/tld", 200); len(got) != 3 {
		t.Errorf("HTTP returned %d attrs, want 3", len(got))
	}
}
