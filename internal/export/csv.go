package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sync"

	"github.com/gocarina/gocsv"
)

// CSVWriter streams records as CSV. The header row is written with the first
// record.
type CSVWriter struct {
	mu      sync.Mutex
	out     *gocsv.SafeCSVWriter
	closer  io.Closer
	written bool
}

// NewCSVWriter writes to w. If w is an io.Closer it is closed by Close.
func NewCSVWriter(w io.Writer) *CSVWriter {
	cw := &CSVWriter{out: gocsv.NewSafeCSVWriter(csv.NewWriter(w))}
	if c, ok := w.(io.Closer); ok {
		cw.closer = c
	}
	return cw
}

// Write appends one row.
func (w *CSVWriter) Write(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	rows := []*Record{&rec}
	var err error
	if !w.written {
		err = gocsv.MarshalCSV(rows, w.out)
		w.written = true
	} else {
		err = gocsv.MarshalCSVWithoutHeaders(rows, w.out)
	}
	if err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	return nil
}

// Close flushes pending output and closes the underlying writer.
func (w *CSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.out.Flush()
	if err := w.out.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}
