// Package report writes CSV listings of extracted catalog records.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/meigma/prosel/internal/entrytype"
)

// DateLayout is the timestamp format used in listings.
const DateLayout = "2006-01-02 15:04"

// Header is the first row of every listing.
var Header = []string{
	"path", "kind", "fork", "file_type", "aux_type", "access",
	"created", "modified", "volume", "start", "length",
	"bytes_written", "anomalies", "digest",
}

// Row is one listing line.
type Row struct {
	Entry        *entrytype.Entry
	BytesWritten int64
	Anomalies    int
	Digest       string
}

// Writer writes a CSV listing. Close must be called to flush it.
type Writer struct {
	csv    *csv.Writer
	closer io.Closer
	rows   int
}

// NewWriter writes a listing to w, starting with the header row.
func NewWriter(w io.Writer) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &Writer{csv: cw}, nil
}

// Create creates or truncates the listing file at path.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	w, err := NewWriter(f)
	if err != nil {
		_ = f.Close() //nolint:errcheck // best-effort cleanup
		return nil, err
	}
	w.closer = f
	return w, nil
}

// Add appends a row.
func (w *Writer) Add(r Row) error {
	e := r.Entry
	rec := []string{
		e.Path,
		e.Kind.String(),
		forkColumn(e),
		fmt.Sprintf("$%02X", e.FileType),
		fmt.Sprintf("$%04X", e.AuxType),
		fmt.Sprintf("$%02X", e.Access),
		formatDate(e.Created),
		formatDate(e.Modified),
		e.Volume,
		strconv.FormatInt(e.Start, 10),
		strconv.FormatInt(e.Length, 10),
		strconv.FormatInt(r.BytesWritten, 10),
		strconv.Itoa(r.Anomalies),
		r.Digest,
	}
	if err := w.csv.Write(rec); err != nil {
		return fmt.Errorf("write row %s: %w", e.Path, err)
	}
	w.rows++
	return nil
}

// Rows returns the number of rows added.
func (w *Writer) Rows() int {
	return w.rows
}

// Close flushes the listing and closes the file opened by Create.
// Closing twice is a no-op.
func (w *Writer) Close() error {
	w.csv.Flush()
	err := w.csv.Error()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
		w.closer = nil
	}
	return err
}

func forkColumn(e *entrytype.Entry) string {
	if !e.Extended {
		return ""
	}
	return e.Fork.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
