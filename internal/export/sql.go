package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/domainsuffixes/internal/logging"
)

// DefaultTable is the table name used when SQLConfig.Table is empty.
const DefaultTable = "suffix_results"

// DefaultBatchSize is the number of rows committed per transaction.
const DefaultBatchSize = 500

// SQLConfig selects the database receiving classification rows.
type SQLConfig struct {
	Dialect   string `yaml:"dialect"`    // sqlite3, postgres, mysql, duckdb, clickhouse
	DSN       string `yaml:"dsn"`        // driver specific data source name
	Table     string `yaml:"table"`      // default: suffix_results
	BatchSize int    `yaml:"batch_size"` // rows per transaction (default: 500)
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLWriter buffers records and inserts them in batches.
type SQLWriter struct {
	mu        sync.Mutex
	db        *sql.DB
	dialect   dialect
	table     string
	insertSQL string
	batchSize int
	pending   []Record
	written   int
}

// NewSQLWriter opens the database, creates the table if needed and returns a
// writer for it.
func NewSQLWriter(ctx context.Context, cfg SQLConfig) (*SQLWriter, error) {
	d, err := lookupDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%s: dsn is required", d.name)
	}

	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	db, err := d.open(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d.name, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", d.name, err)
	}

	w := &SQLWriter{
		db:        db,
		dialect:   d,
		table:     table,
		insertSQL: d.insert(table),
		batchSize: batch,
	}
	if err := w.createTable(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logging.Debug("export table ready", logging.Dialect(d.name), slog.String("table", table))
	return w, nil
}

func (w *SQLWriter) createTable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, stmt := range w.dialect.ddl(w.table) {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", w.table, err)
		}
	}
	return nil
}

// Write queues rec and flushes once a full batch is pending.
func (w *SQLWriter) Write(ctx context.Context, rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, rec)
	if len(w.pending) < w.batchSize {
		return nil
	}
	return w.flush(ctx)
}

// Flush commits pending rows.
func (w *SQLWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flush(ctx)
}

func (w *SQLWriter) flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, w.insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range w.pending {
		if _, err := stmt.ExecContext(ctx, w.pending[i].args()...); err != nil {
			return fmt.Errorf("failed to insert %q: %w", w.pending[i].Input, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	w.written += len(w.pending)
	w.pending = w.pending[:0]
	return nil
}

// Written returns the number of committed rows.
func (w *SQLWriter) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Close flushes pending rows and closes the database.
func (w *SQLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	flushErr := w.flush(ctx)
	if err := w.db.Close(); err != nil && flushErr == nil {
		return err
	}
	return flushErr
}
