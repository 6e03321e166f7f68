package feed

import (
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

const dateLayout = "2006-01-02"

// dateRow is one "tld,YYYY-MM-DD" line of the registration date resource.
type dateRow struct {
	TLD  string `csv:"tld"`
	Date string `csv:"date"`
}

// ParseRegistrationDates reads the headerless TLD registration date CSV.
func ParseRegistrationDates(r io.Reader) (map[string]time.Time, error) {
	const source = "registration dates"

	var rows []*dateRow
	if err := gocsv.UnmarshalWithoutHeaders(r, &rows); err != nil {
		return nil, NewParseErrorWithCause(source, 0, "invalid csv", err)
	}

	dates := make(map[string]time.Time, len(rows))
	for i, row := range rows {
		tld := strings.TrimSpace(row.TLD)
		if tld == "" {
			return nil, NewFieldParseError(source, i+1, "tld", row.TLD, "empty tld")
		}
		d, err := time.Parse(dateLayout, strings.TrimSpace(row.Date))
		if err != nil {
			e := NewFieldParseError(source, i+1, "date", row.Date, "invalid date")
			e.Cause = err
			return nil, e
		}
		dates[tld] = d
	}
	return dates, nil
}
