package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/meigma/prosel"
	"github.com/meigma/prosel/internal/report"
)

// lister prints the console listing and feeds the CSV report.
type lister struct {
	out     io.Writer
	verbose bool
	csv     *report.Writer
}

func newLister(out io.Writer, verbose bool, csv *report.Writer) *lister {
	return &lister{out: out, verbose: verbose, csv: csv}
}

func (l *lister) banner(volumeName string) {
	fmt.Fprintf(l.out, "This is a backup of directory %s.\n\n", volumeName)
}

// list records one processed entry. Verbose listings print a line per entry.
func (l *lister) list(r prosel.Result) error {
	if l.verbose {
		fmt.Fprintln(l.out, formatEntry(r.Entry))
	}
	if l.csv == nil {
		return nil
	}
	return l.csv.Add(report.Row{
		Entry:        r.Entry,
		BytesWritten: r.BytesWritten,
		Anomalies:    len(r.Anomalies),
		Digest:       r.Digest.String(),
	})
}

// marker prints a progress marker. Verbose listings only show anomaly and
// unknown-kind markers.
func (l *lister) marker(m prosel.Marker) {
	switch {
	case m == prosel.MarkerNone:
	case m == prosel.MarkerEntry && l.verbose:
	default:
		fmt.Fprint(l.out, string(rune(m)))
	}
}

func (l *lister) summary(s prosel.Stats) {
	fmt.Fprintf(l.out, "Disc images processed: %d\n", s.Volumes)
	fmt.Fprintf(l.out, "Files extracted:       %s\n", humanize.Comma(int64(s.Files)))
	fmt.Fprintf(l.out, "Directories created:   %s\n", humanize.Comma(int64(s.Directories)))
	fmt.Fprintf(l.out, "Bytes written:         %s (%s)\n", humanize.Comma(int64(s.Bytes)), humanize.IBytes(s.Bytes)) //nolint:gosec // byte totals fit in int64
	if s.Anomalies > 0 {
		fmt.Fprintf(l.out, "Decode anomalies:      %d\n", s.Anomalies)
	}
	if s.Skipped > 0 {
		fmt.Fprintf(l.out, "Entries skipped:       %d\n", s.Skipped)
	}
	if s.Failed > 0 {
		fmt.Fprintf(l.out, "Entries failed:        %d\n", s.Failed)
	}
	fmt.Fprintln(l.out, "Extraction complete")
}

// formatEntry renders the verbose listing line of an entry: name, fork,
// file type and modification date.
func formatEntry(e *prosel.Entry) string {
	date := ""
	if m := e.Modified; !m.IsZero() {
		date = fmt.Sprintf("%2d-%3s-%02d %2d:%02d", m.Day(), m.Month().String()[:3], m.Year()%100, m.Hour(), m.Minute())
	}
	return fmt.Sprintf("%-46s%-14s$%02X  %s", e.Path, e.ForkLabel(), e.FileType, date)
}
