package export

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/lib/pq"               // PostgreSQL driver
	_ "github.com/marcboeker/go-duckdb" // DuckDB driver
	_ "github.com/mattn/go-sqlite3"     // SQLite driver
)

// Supported dialect names.
const (
	DialectSQLite     = "sqlite3"
	DialectPostgres   = "postgres"
	DialectMySQL      = "mysql"
	DialectDuckDB     = "duckdb"
	DialectClickHouse = "clickhouse"
)

// columns in insert order. Values come from Record.args.
var columns = []string{
	"input",
	"matched",
	"tld",
	"tld_puny",
	"tld_type",
	"tld_registry",
	"tld_create_date",
	"effective_tld",
	"effective_tld_is_public",
	"registrable_domain",
	"pqdn",
	"ipv4",
	"ipv6",
}

func (r *Record) args() []any {
	return []any{
		r.Input,
		r.Matched,
		r.TLD,
		r.TLDPunycode,
		r.TLDType,
		r.TLDRegistry,
		r.TLDCreated,
		r.EffectiveTLD,
		r.Public,
		r.RegistrableDomain,
		r.PQDN,
		r.IPv4,
		r.IPv6,
	}
}

const sqliteCreateTableSQL = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id                       INTEGER PRIMARY KEY AUTOINCREMENT,
    input                    TEXT NOT NULL,
    matched                  INTEGER NOT NULL,
    tld                      TEXT NOT NULL DEFAULT '',
    tld_puny                 TEXT NOT NULL DEFAULT '',
    tld_type                 TEXT NOT NULL DEFAULT '',
    tld_registry             TEXT NOT NULL DEFAULT '',
    tld_create_date          TEXT NOT NULL DEFAULT '',
    effective_tld            TEXT NOT NULL DEFAULT '',
    effective_tld_is_public  INTEGER NOT NULL DEFAULT 0,
    registrable_domain       TEXT NOT NULL DEFAULT '',
    pqdn                     TEXT NOT NULL DEFAULT '',
    ipv4                     INTEGER NOT NULL DEFAULT 0,
    ipv6                     INTEGER NOT NULL DEFAULT 0,
    created_at               TEXT NOT NULL DEFAULT (strftime('%%Y-%%m-%%dT%%H:%%M:%%f', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_tld ON %[1]s (tld);
CREATE INDEX IF NOT EXISTS idx_%[1]s_registrable_domain ON %[1]s (registrable_domain);
`

const postgresCreateTableSQL = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id                       BIGSERIAL PRIMARY KEY,
    input                    TEXT NOT NULL,
    matched                  BOOLEAN NOT NULL,
    tld                      TEXT NOT NULL DEFAULT '',
    tld_puny                 TEXT NOT NULL DEFAULT '',
    tld_type                 TEXT NOT NULL DEFAULT '',
    tld_registry             TEXT NOT NULL DEFAULT '',
    tld_create_date          TEXT NOT NULL DEFAULT '',
    effective_tld            TEXT NOT NULL DEFAULT '',
    effective_tld_is_public  BOOLEAN NOT NULL DEFAULT FALSE,
    registrable_domain       TEXT NOT NULL DEFAULT '',
    pqdn                     TEXT NOT NULL DEFAULT '',
    ipv4                     BOOLEAN NOT NULL DEFAULT FALSE,
    ipv6                     BOOLEAN NOT NULL DEFAULT FALSE,
    created_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_tld ON %[1]s (tld);
CREATE INDEX IF NOT EXISTS idx_%[1]s_registrable_domain ON %[1]s (registrable_domain);
`

const mysqlCreateTableSQL = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id                       BIGINT AUTO_INCREMENT PRIMARY KEY,
    input                    VARCHAR(255) NOT NULL,
    matched                  BOOLEAN NOT NULL,
    tld                      VARCHAR(63) NOT NULL DEFAULT '',
    tld_puny                 VARCHAR(63) NOT NULL DEFAULT '',
    tld_type                 VARCHAR(32) NOT NULL DEFAULT '',
    tld_registry             VARCHAR(255) NOT NULL DEFAULT '',
    tld_create_date          VARCHAR(10) NOT NULL DEFAULT '',
    effective_tld            VARCHAR(255) NOT NULL DEFAULT '',
    effective_tld_is_public  BOOLEAN NOT NULL DEFAULT FALSE,
    registrable_domain       VARCHAR(255) NOT NULL DEFAULT '',
    pqdn                     VARCHAR(255) NOT NULL DEFAULT '',
    ipv4                     BOOLEAN NOT NULL DEFAULT FALSE,
    ipv6                     BOOLEAN NOT NULL DEFAULT FALSE,
    created_at               TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_tld (tld),
    INDEX idx_registrable_domain (registrable_domain)
)`

const duckdbCreateTableSQL = `
CREATE TABLE IF NOT EXISTS %[1]s (
    input                    VARCHAR NOT NULL,
    matched                  BOOLEAN NOT NULL,
    tld                      VARCHAR NOT NULL DEFAULT '',
    tld_puny                 VARCHAR NOT NULL DEFAULT '',
    tld_type                 VARCHAR NOT NULL DEFAULT '',
    tld_registry             VARCHAR NOT NULL DEFAULT '',
    tld_create_date          VARCHAR NOT NULL DEFAULT '',
    effective_tld            VARCHAR NOT NULL DEFAULT '',
    effective_tld_is_public  BOOLEAN NOT NULL DEFAULT FALSE,
    registrable_domain       VARCHAR NOT NULL DEFAULT '',
    pqdn                     VARCHAR NOT NULL DEFAULT '',
    ipv4                     BOOLEAN NOT NULL DEFAULT FALSE,
    ipv6                     BOOLEAN NOT NULL DEFAULT FALSE,
    created_at               TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const clickhouseCreateTableSQL = `
CREATE TABLE IF NOT EXISTS %[1]s (
    input                    String,
    matched                  Bool,
    tld                      LowCardinality(String),
    tld_puny                 String,
    tld_type                 LowCardinality(String),
    tld_registry             String,
    tld_create_date          String,
    effective_tld            LowCardinality(String),
    effective_tld_is_public  Bool,
    registrable_domain       String,
    pqdn                     String,
    ipv4                     Bool,
    ipv6                     Bool,
    created_at               DateTime DEFAULT now()
) ENGINE = MergeTree()
ORDER BY (tld, registrable_domain, input)`

// dialect describes how one database flavour is opened and written.
type dialect struct {
	name         string
	createTable  string
	multiStmtDDL bool
	placeholder  func(n int) string
	open         func(dsn string) (*sql.DB, error)
}

func questionMark(int) string { return "?" }

func dollar(n int) string { return "$" + strconv.Itoa(n) }

var dialects = map[string]dialect{
	DialectSQLite: {
		name:         DialectSQLite,
		createTable:  sqliteCreateTableSQL,
		multiStmtDDL: true,
		placeholder:  questionMark,
		open: func(dsn string) (*sql.DB, error) {
			if !strings.Contains(dsn, "?") {
				dsn += "?_journal_mode=WAL&_busy_timeout=5000"
			}
			db, err := sql.Open("sqlite3", dsn)
			if err != nil {
				return nil, err
			}
			// single writer
			db.SetMaxOpenConns(1)
			return db, nil
		},
	},
	DialectPostgres: {
		name:         DialectPostgres,
		createTable:  postgresCreateTableSQL,
		multiStmtDDL: true,
		placeholder:  dollar,
		open: func(dsn string) (*sql.DB, error) {
			db, err := sql.Open("postgres", dsn)
			if err != nil {
				return nil, err
			}
			db.SetMaxOpenConns(5)
			db.SetMaxIdleConns(2)
			db.SetConnMaxLifetime(time.Hour)
			return db, nil
		},
	},
	DialectMySQL: {
		name:        DialectMySQL,
		createTable: mysqlCreateTableSQL,
		placeholder: questionMark,
		open: func(dsn string) (*sql.DB, error) {
			db, err := sql.Open("mysql", dsn)
			if err != nil {
				return nil, err
			}
			db.SetMaxOpenConns(5)
			db.SetMaxIdleConns(2)
			db.SetConnMaxLifetime(time.Hour)
			return db, nil
		},
	},
	DialectDuckDB: {
		name:        DialectDuckDB,
		createTable: duckdbCreateTableSQL,
		placeholder: questionMark,
		open: func(dsn string) (*sql.DB, error) {
			db, err := sql.Open("duckdb", dsn)
			if err != nil {
				return nil, err
			}
			db.SetMaxOpenConns(1)
			return db, nil
		},
	},
	DialectClickHouse: {
		name:        DialectClickHouse,
		createTable: clickhouseCreateTableSQL,
		placeholder: questionMark,
		open: func(dsn string) (*sql.DB, error) {
			opts, err := clickhouse.ParseDSN(dsn)
			if err != nil {
				return nil, err
			}
			if opts.Compression == nil {
				opts.Compression = &clickhouse.Compression{Method: clickhouse.CompressionLZ4}
			}
			// pool limits go on the sql.DB, not on Options
			db := clickhouse.OpenDB(opts)
			db.SetMaxOpenConns(5)
			db.SetMaxIdleConns(2)
			db.SetConnMaxLifetime(time.Hour)
			return db, nil
		},
	},
}

// Dialects lists the supported dialect names.
func Dialects() []string {
	return []string{DialectSQLite, DialectPostgres, DialectMySQL, DialectDuckDB, DialectClickHouse}
}

func lookupDialect(name string) (dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported dialect %q (want one of %s)", name, strings.Join(Dialects(), ", "))
	}
	return d, nil
}

// ddl returns the statements creating table.
func (d dialect) ddl(table string) []string {
	text := fmt.Sprintf(d.createTable, table)
	if !d.multiStmtDDL {
		return []string{text}
	}
	var stmts []string
	for _, s := range strings.Split(text, ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// insert returns the parameterized insert statement for table.
func (d dialect) insert(table string) string {
	marks := make([]string, len(columns))
	for i := range marks {
		marks[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(marks, ", "))
}
