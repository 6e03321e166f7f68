package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/domainsuffixes/internal/domain"
	"github.com/domainsuffixes/internal/logging"
)

// FormatCSV selects the CSV writer in Open. Any other format is a SQL dialect.
const FormatCSV = "csv"

// Summary counts the outcome of one Classify run.
type Summary struct {
	Lines    int
	Skipped  int
	Matched  int
	Public   int
	Private  int
	IP       int
	Unknown  int
	Duration time.Duration
}

// Classify parses one host per line from in and writes a record per host to
// out. Blank lines and lines starting with '#' are skipped. Hosts are
// normalized before parsing; hosts that fail normalization are written as
// unmatched.
func Classify(ctx context.Context, p *domain.Parser, in io.Reader, out Writer) (Summary, error) {
	start := time.Now()
	var sum Summary

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		sum.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			sum.Skipped++
			continue
		}

		var res *domain.ParsedResult
		if host, err := domain.NormalizeHost(line); err == nil {
			res, _ = p.Parse(host)
		}

		switch {
		case res == nil:
			sum.Unknown++
		case res.IsIP():
			sum.IP++
		default:
			sum.Matched++
			if res.IsPublic() {
				sum.Public++
			} else {
				sum.Private++
			}
		}

		if err := out.Write(ctx, NewRecord(line, res)); err != nil {
			return sum, fmt.Errorf("line %d: %w", sum.Lines, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("failed to read input: %w", err)
	}

	sum.Duration = time.Since(start)
	logging.Info("classification finished",
		logging.Count("line", sum.Lines),
		logging.Count("matched", sum.Matched),
		logging.Count("ip", sum.IP),
		logging.Count("unknown", sum.Unknown),
		logging.Duration("classify", sum.Duration))
	return sum, nil
}

// Open returns a writer for format. For csv, target is a file path or "-"
// for stdout. For SQL dialects target is the DSN and table the destination
// table.
func Open(ctx context.Context, format, target, table string) (Writer, error) {
	if strings.EqualFold(format, FormatCSV) {
		if target == "" || target == "-" {
			return NewCSVWriter(nopCloser{os.Stdout}), nil
		}
		f, err := os.Create(target)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", target, err)
		}
		return NewCSVWriter(f), nil
	}
	return NewSQLWriter(ctx, SQLConfig{Dialect: format, DSN: target, Table: table})
}

type nopCloser struct{ io.Writer }
