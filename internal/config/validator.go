package config

import (
	"fmt"
	"strings"

	"github.com/domainsuffixes/internal/export"
	"github.com/domainsuffixes/internal/logging"
)

// Validator interface for config validation
type Validator interface {
	Validate() error
}

// ValidationErrors collects multiple validation errors
type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Add(err error) {
	if err != nil {
		ve.Errors = append(ve.Errors, err)
	}
}

func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		messages[i] = fmt.Sprintf("  - %s", err.Error())
	}

	return fmt.Sprintf("configuration validation failed:\n%s",
		strings.Join(messages, "\n"))
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

func (ve *ValidationErrors) result() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs.Add(c.Server.Validate())
	errs.Add(c.Feeds.Validate())
	if c.Snapshot.Enabled {
		errs.Add(c.Snapshot.Validate())
	}
	errs.Add(c.Refresh.Validate())
	if c.Export.Dialect != "" {
		errs.Add(validateExport(&c.Export))
	}
	errs.Add(validateLogging(&c.Logging))

	return errs.result()
}

// Validate validates HTTP server configuration
func (c *ServerConfig) Validate() error {
	var errs ValidationErrors

	if c.Port < 1 || c.Port > 65535 {
		errs.Add(fmt.Errorf("server.port must be between 1-65535, got %d", c.Port))
	}
	if c.ReadTimeout < 0 {
		errs.Add(fmt.Errorf("server.read_timeout cannot be negative"))
	}
	if c.WriteTimeout < 0 {
		errs.Add(fmt.Errorf("server.write_timeout cannot be negative"))
	}
	if c.ShutdownTimeout < 0 {
		errs.Add(fmt.Errorf("server.shutdown_timeout cannot be negative"))
	}

	return errs.result()
}

// Validate validates feed locations
func (c *FeedsConfig) Validate() error {
	var errs ValidationErrors

	if c.RootZone == "" {
		errs.Add(fmt.Errorf("feeds.root_zone is required"))
	}
	if c.SuffixList == "" {
		errs.Add(fmt.Errorf("feeds.suffix_list is required"))
	}
	if c.Timeout < 0 {
		errs.Add(fmt.Errorf("feeds.timeout cannot be negative"))
	}

	return errs.result()
}

// Validate validates snapshot storage configuration
func (c *SnapshotConfig) Validate() error {
	var errs ValidationErrors

	switch c.Backend {
	case BackendBadger:
		if c.MaxMemoryMB < 1 {
			errs.Add(fmt.Errorf("snapshot.max_memory_mb must be positive, got %d", c.MaxMemoryMB))
		}
		if c.ValueLogMaxMB < 1 {
			errs.Add(fmt.Errorf("snapshot.value_log_max_mb must be positive, got %d", c.ValueLogMaxMB))
		}
	case BackendFile:
	default:
		errs.Add(fmt.Errorf("snapshot.backend must be one of: [%s %s], got %s", BackendBadger, BackendFile, c.Backend))
	}

	if c.Path == "" {
		errs.Add(fmt.Errorf("snapshot.path is required when snapshots are enabled"))
	}
	if c.MaxAge < 0 {
		errs.Add(fmt.Errorf("snapshot.max_age cannot be negative"))
	}
	if c.GCDiscardRatio < 0 || c.GCDiscardRatio > 1 {
		errs.Add(fmt.Errorf("snapshot.gc_discard_ratio must be between 0 and 1, got %.2f", c.GCDiscardRatio))
	}

	return errs.result()
}

// Validate validates refresh scheduling
func (c *RefreshConfig) Validate() error {
	var errs ValidationErrors

	if c.Interval < 0 {
		errs.Add(fmt.Errorf("refresh.interval cannot be negative"))
	}
	if c.InitialBackoff < 0 {
		errs.Add(fmt.Errorf("refresh.initial_backoff cannot be negative"))
	}
	if c.MaxBackoff < 0 {
		errs.Add(fmt.Errorf("refresh.max_backoff cannot be negative"))
	}
	if c.MaxBackoff > 0 && c.InitialBackoff > c.MaxBackoff {
		errs.Add(fmt.Errorf("refresh.initial_backoff (%s) cannot exceed max_backoff (%s)",
			c.InitialBackoff, c.MaxBackoff))
	}
	if c.BuildTimeout < 0 {
		errs.Add(fmt.Errorf("refresh.build_timeout cannot be negative"))
	}

	return errs.result()
}

func validateExport(c *export.SQLConfig) error {
	var errs ValidationErrors

	known := false
	for _, d := range export.Dialects() {
		if strings.EqualFold(c.Dialect, d) {
			known = true
			break
		}
	}
	if !known {
		errs.Add(fmt.Errorf("export.dialect must be one of: %v, got %s", export.Dialects(), c.Dialect))
	}
	if c.DSN == "" {
		errs.Add(fmt.Errorf("export.dsn is required when export.dialect is set"))
	}
	if c.BatchSize < 0 {
		errs.Add(fmt.Errorf("export.batch_size cannot be negative, got %d", c.BatchSize))
	}

	return errs.result()
}

func validateLogging(c *logging.Config) error {
	var errs ValidationErrors

	if !logging.ValidLevel(c.Level) {
		errs.Add(fmt.Errorf("logging.level must be one of: [debug info warn error], got %s", c.Level))
	}
	if c.MaxSize < 0 {
		errs.Add(fmt.Errorf("logging.max_size cannot be negative, got %d", c.MaxSize))
	}
	if c.MaxBackups < 0 {
		errs.Add(fmt.Errorf("logging.max_backups cannot be negative, got %d", c.MaxBackups))
	}
	if c.MaxAge < 0 {
		errs.Add(fmt.Errorf("logging.max_age cannot be negative, got %d", c.MaxAge))
	}

	return errs.result()
}
