// Package ledger tracks, per output path, how many decompressed bytes each
// fork has received during an extraction run.
//
// Continuation records on later volumes and the resource fork record of an
// extended file consult the ledger to find where their bytes belong instead
// of inferring it from the output file's size.
package ledger

import (
	"github.com/meigma/prosel/internal/entrytype"
)

// Record is the ledger state of one output path.
type Record struct {
	// Data and Resource are the fork bytes written so far.
	Data     int64
	Resource int64

	// DataDone is set once the data fork's final record has been written.
	DataDone bool

	// Records counts the catalog records applied to this path.
	Records int
}

// Written returns the bytes already written for a fork.
func (r *Record) Written(fork entrytype.Fork) int64 {
	if fork == entrytype.ForkResource {
		return r.Resource
	}
	return r.Data
}

// Ledger maps normalized output paths to their records.
// The zero value is not usable; use New.
type Ledger struct {
	records map[string]*Record
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{records: make(map[string]*Record)}
}

// Lookup returns the record for path, if any record has been applied.
func (l *Ledger) Lookup(path string) (Record, bool) {
	r, ok := l.records[path]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Remaining returns how many bytes of the fork are still to be produced for
// a fork whose full length is total. It never returns a negative value.
func (l *Ledger) Remaining(path string, fork entrytype.Fork, total int64) int64 {
	r, ok := l.records[path]
	if !ok {
		return total
	}
	return max(total-r.Written(fork), 0)
}

// Apply records n bytes written to a fork of path. final marks the fork's
// last record.
func (l *Ledger) Apply(path string, fork entrytype.Fork, n int64, final bool) Record {
	r, ok := l.records[path]
	if !ok {
		r = &Record{}
		l.records[path] = r
	}
	r.Records++
	if fork == entrytype.ForkResource {
		r.Resource += n
	} else {
		r.Data += n
		if final {
			r.DataDone = true
		}
	}
	return *r
}

// Len returns the number of tracked paths.
func (l *Ledger) Len() int {
	return len(l.records)
}
