package export

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/domainsuffixes/internal/domain"
	"github.com/domainsuffixes/internal/registry"
	"github.com/domainsuffixes/internal/trie"
)

func newTestParser(t *testing.T) *domain.Parser {
	t.Helper()

	created := time.Date(1985, time.January, 1, 0, 0, 0, 0, time.UTC)
	feed := &registry.Feed{
		TLDs: []registry.TLDEntry{
			{Suffix: "com", Type: trie.TypeGeneric, Registry: "VeriSign Global Registry Services", Created: &created},
			{Suffix: "uk", Type: trie.TypeCountryCode, Registry: "Nominet UK"},
			{Suffix: "io", Type: trie.TypeCountryCode},
		},
		SuffixLines: []string{
			"co.uk",
			registry.PrivateMarker,
			"github.io",
		},
	}
	reg, err := registry.Build(feed)
	if err != nil {
		t.Fatalf("registry.Build: %v", err)
	}
	return domain.NewParser(reg)
}

const input = `# hosts
www.example.com
https://shop.example.co.uk/cart

user.github.io
192.168.1.1
nothing.invalid
`

type memWriter struct {
	records []Record
	closed  bool
}

func (m *memWriter) Write(_ context.Context, rec Record) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memWriter) Close() error {
	m.closed = true
	return nil
}

func TestClassify(t *testing.T) {
	p := newTestParser(t)
	out := &memWriter{}

	sum, err := Classify(context.Background(), p, strings.NewReader(input), out)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	sum.Duration = 0
	want := Summary{Lines: 7, Skipped: 2, Matched: 3, Public: 2, Private: 1, IP: 1, Unknown: 1}
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	wantRecords := []Record{
		{
			Input: "www.example.com", Matched: true, TLD: "com", TLDType: "generic",
			TLDRegistry: "VeriSign Global Registry Services", TLDCreated: "1985-01-01",
			EffectiveTLD: "com", Public: true, RegistrableDomain: "example.com", PQDN: "www",
		},
		{
			Input: "https://shop.example.co.uk/cart", Matched: true, TLD: "uk", TLDType: "country-code",
			TLDRegistry: "Nominet UK", EffectiveTLD: "co.uk", Public: true,
			RegistrableDomain: "example.co.uk", PQDN: "shop",
		},
		{
			Input: "user.github.io", Matched: true, TLD: "io", TLDType: "country-code",
			EffectiveTLD: "github.io", RegistrableDomain: "user.github.io",
		},
		{Input: "192.168.1.1", Matched: true, IPv4: true},
		{Input: "nothing.invalid"},
	}
	if diff := cmp.Diff(wantRecords, out.records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyCancelled(t *testing.T) {
	p := newTestParser(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Classify(ctx, p, strings.NewReader(input), &memWriter{}); err == nil {
		t.Fatal("Classify with cancelled context succeeded")
	}
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	ctx := context.Background()

	rows := []Record{
		{Input: "a.example.com", Matched: true, TLD: "com", EffectiveTLD: "com", Public: true, RegistrableDomain: "example.com", PQDN: "a"},
		{Input: "b.invalid"},
	}
	for _, r := range rows {
		if err := w.Write(ctx, r); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "input,matched,tld,") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(buf.String(), "input,matched") != 1 {
		t.Error("header written more than once")
	}
	if !strings.HasPrefix(lines[1], "a.example.com,true,com,") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "b.invalid,false,") {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestDialectInsert(t *testing.T) {
	tests := []struct {
		dialect string
		prefix  string
		suffix  string
	}{
		{DialectSQLite, "INSERT INTO t (input, matched,", "VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"},
		{DialectPostgres, "INSERT INTO t (input,", "VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)"},
		{DialectClickHouse, "INSERT INTO t (input,", "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			d, err := lookupDialect(tt.dialect)
			if err != nil {
				t.Fatalf("lookupDialect: %v", err)
			}
			got := d.insert("t")
			if !strings.HasPrefix(got, tt.prefix) || !strings.HasSuffix(got, tt.suffix) {
				t.Errorf("insert = %q", got)
			}
		})
	}

	if _, err := lookupDialect("oracle"); err == nil {
		t.Error("lookupDialect(oracle) succeeded")
	}
}

func TestDialectDDL(t *testing.T) {
	d, _ := lookupDialect(DialectSQLite)
	stmts := d.ddl("results")
	if len(stmts) != 3 {
		t.Fatalf("sqlite ddl has %d statements, want 3", len(stmts))
	}
	if !strings.Contains(stmts[0], "CREATE TABLE IF NOT EXISTS results") {
		t.Errorf("create statement = %q", stmts[0])
	}
	if !strings.Contains(stmts[0], "strftime('%Y-%m-%dT%H:%M:%f', 'now')") {
		t.Error("strftime format not unescaped")
	}

	d, _ = lookupDialect(DialectClickHouse)
	if stmts := d.ddl("results"); len(stmts) != 1 || !strings.Contains(stmts[0], "MergeTree") {
		t.Errorf("clickhouse ddl = %q", stmts)
	}
}

func TestSQLWriterSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	w, err := NewSQLWriter(ctx, SQLConfig{Dialect: DialectSQLite, DSN: path, BatchSize: 2})
	if err != nil {
		t.Fatalf("NewSQLWriter: %v", err)
	}

	p := newTestParser(t)
	sum, err := Classify(ctx, p, strings.NewReader(input), w)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if w.Written() != 4 {
		t.Errorf("Written before close = %d, want 4 (two full batches)", w.Written())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var total int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + DefaultTable).Scan(&total); err != nil {
		t.Fatalf("count: %v", err)
	}
	if want := sum.Lines - sum.Skipped; total != want {
		t.Errorf("rows = %d, want %d", total, want)
	}

	var registrable string
	var public bool
	err = db.QueryRow("SELECT registrable_domain, effective_tld_is_public FROM "+DefaultTable+" WHERE input = ?",
		"https://shop.example.co.uk/cart").Scan(&registrable, &public)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if registrable != "example.co.uk" || !public {
		t.Errorf("row = (%q, %v), want (example.co.uk, true)", registrable, public)
	}
}

func TestNewSQLWriterValidation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cfg  SQLConfig
	}{
		{"unknown dialect", SQLConfig{Dialect: "oracle", DSN: "x"}},
		{"missing dsn", SQLConfig{Dialect: DialectSQLite}},
		{"bad table", SQLConfig{Dialect: DialectSQLite, DSN: filepath.Join(t.TempDir(), "x.db"), Table: "drop table;"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w, err := NewSQLWriter(ctx, tt.cfg); err == nil {
				w.Close()
				t.Error("NewSQLWriter succeeded")
			}
		})
	}
}
