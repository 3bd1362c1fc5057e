package prosel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/prosel/internal/applesingle"
	"github.com/meigma/prosel/internal/entrytype"
	"github.com/meigma/prosel/internal/ledger"
	"github.com/meigma/prosel/internal/pathutil"
	"github.com/meigma/prosel/internal/rle"
	"github.com/meigma/prosel/internal/sink"
	"github.com/meigma/prosel/internal/volume"
)

// Result describes one processed catalog record.
type Result struct {
	// Entry is the processed record.
	Entry *Entry

	// BytesWritten is the number of decompressed fork bytes this record
	// contributed. It is zero for directories and skipped records.
	BytesWritten int64

	// Size is the logical size of the output file after the record,
	// including header and padding.
	Size int64

	// Consumed is the number of compressed bytes read from the volume.
	Consumed int64

	// Resumed is the number of fork bytes written by earlier records.
	Resumed int64

	// Stop tells why decoding ended.
	Stop StopReason

	// Anomalies lists the invalid control bytes found while decoding.
	Anomalies []Anomaly

	// Digest is the digest of the decompressed bytes of this record.
	Digest digest.Digest

	// Skipped is set when the record produced no output: unknown kinds and
	// resource forks in plain mode.
	Skipped bool
}

// Stats contains counters for an extraction run.
type Stats struct {
	// Volumes is the number of distinct source volumes visited.
	Volumes int

	// Directories is the number of directory records created.
	Directories int

	// Files is the number of file records extracted.
	Files int

	// Bytes is the total number of decompressed bytes written.
	Bytes uint64

	// Anomalies is the total number of invalid control bytes.
	Anomalies int

	// Skipped is the number of records that produced no output.
	Skipped int

	// Failed is the number of records that failed without aborting the run.
	Failed int
}

// Extractor writes catalog records into an output tree.
//
// Records are processed sequentially and an Extractor is not safe for
// concurrent use. The continuation ledger lives for the Extractor's
// lifetime: every disc of one backup must go through the same Extractor.
type Extractor struct {
	sink   *sink.FileSink
	ledger *ledger.Ledger
	opener *volume.Opener

	enveloped     bool
	preserveTimes bool
	capacity      volume.CapacityFunc
	volumeOpts    []volume.Option
	logger        *slog.Logger
	progress      ProgressFunc

	stats      Stats
	lastVolume string
}

// NewExtractor creates an Extractor writing below outputRoot, which is
// created if needed.
func NewExtractor(outputRoot string, opts ...Option) (*Extractor, error) {
	x := &Extractor{
		ledger:   ledger.New(),
		capacity: volume.FixedCapacity(volume.DefaultCapacity),
	}
	for _, opt := range opts {
		opt(x)
	}

	if err := os.MkdirAll(outputRoot, 0o750); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}

	opener, err := volume.NewOpener(append(x.volumeOpts, volume.WithLogger(x.logger))...)
	if err != nil {
		return nil, err
	}
	x.opener = opener
	x.sink = sink.NewFileSink(outputRoot, sink.WithPreserveTimes(x.preserveTimes))
	return x, nil
}

// OutputRoot returns the directory records are written below.
func (x *Extractor) OutputRoot() string {
	return x.sink.DestDir()
}

// Stats returns the counters accumulated by ExtractAll.
func (x *Extractor) Stats() Stats {
	return x.stats
}

// Close releases inflated volume images.
func (x *Extractor) Close() error {
	x.opener.Purge()
	return nil
}

func (x *Extractor) log() *slog.Logger {
	if x.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return x.logger
}

// reportProgress sends a progress event if a callback is configured.
func (x *Extractor) reportProgress(stage ProgressStage, path string, marker Marker) {
	if x.progress == nil {
		return
	}
	x.progress(ProgressEvent{
		Stage:     stage,
		Path:      path,
		Marker:    marker,
		BytesDone: x.stats.Bytes,
		FilesDone: x.stats.Files + x.stats.Directories,
		Anomalies: x.stats.Anomalies,
	})
}

// Extract processes one catalog record.
//
// Directories are created. File records are decoded from their volume and
// placed in the output file for their path: the first record for a path
// creates it, later records (the rest of a file continued from an earlier
// volume, or the resource fork of an extended file) reopen it and write at
// the position recorded in the continuation ledger.
//
// Decode anomalies are returned in the result, not as an error. A record
// whose volume ends early keeps its partial bytes and fails with
// ErrTruncatedStream. Failures to open the volume match ErrVolumeUnavailable.
func (x *Extractor) Extract(entry *Entry) (Result, error) {
	res := Result{Entry: entry}
	if err := entry.Validate(); err != nil {
		return res, err
	}

	switch entry.Kind {
	case entrytype.KindDirectory:
		if err := x.sink.MakeDir(entry); err != nil {
			return res, err
		}
		x.log().Debug("created directory", "path", entry.Path)
		return res, nil
	case entrytype.KindFile, entrytype.KindFileContinued:
		return x.extractFile(entry)
	default:
		res.Skipped = true
		return res, fmt.Errorf("%w: %s: %s", entrytype.ErrUnknownEntryKind, entry.Path, entry.Kind)
	}
}

func (x *Extractor) extractFile(entry *Entry) (Result, error) {
	res := Result{Entry: entry}

	if !x.enveloped && entry.IsResourceFork() {
		res.Skipped = true
		x.log().Debug("skipped resource fork", "path", entry.Path)
		return res, nil
	}
	if _, err := sink.RelPath(entry); err != nil {
		return res, err
	}

	key := pathutil.Normalize(entry.Path)
	fork := entrytype.ForkData
	if entry.Extended {
		fork = entry.Fork
	}
	rec, seen := x.ledger.Lookup(key)
	res.Resumed = rec.Written(fork)
	target := x.ledger.Remaining(key, fork, entry.Length)

	vol, err := x.opener.Open(entry.Volume)
	if err != nil {
		return res, err
	}
	defer vol.Close()

	var limit int64
	if entry.Kind == entrytype.KindFileContinued {
		limit = volume.CapacityFor(x.capacity, entry.Volume, vol.Size())
	}

	decoded, decodeErr := rle.Decompress(vol, entry.Start, target, limit)
	if decodeErr != nil && !errors.Is(decodeErr, entrytype.ErrTruncatedStream) {
		return res, fmt.Errorf("decode %s: %w", entry.Path, decodeErr)
	}
	res.Consumed = decoded.Consumed
	res.Stop = decoded.Stop
	res.Anomalies = decoded.Anomalies

	for _, a := range decoded.Anomalies {
		x.log().Warn("decode anomaly",
			"path", entry.Path,
			"volume", entry.Volume,
			"offset", a.Offset,
			"control", a.Control)
	}

	final := entry.Kind == entrytype.KindFile && decodeErr == nil
	if seen {
		if fork == entrytype.ForkResource && !rec.DataDone {
			x.log().Warn("resource fork follows an incomplete data fork",
				"path", entry.Path,
				"data", rec.Data)
		}
		x.log().Debug("resuming output",
			"path", entry.Path,
			"fork", fork.String(),
			"records", rec.Records,
			"resume", res.Resumed,
			"remaining", target)
	}

	size, err := x.write(entry, applesingle.Placement{
		First:      !seen,
		Resume:     res.Resumed,
		DataLength: rec.Data,
		Final:      final,
	}, decoded.Data)
	if err != nil {
		return res, err
	}

	n := int64(len(decoded.Data))
	x.ledger.Apply(key, fork, n, final)
	res.BytesWritten = n
	res.Size = size
	res.Digest = digest.FromBytes(decoded.Data)

	x.log().Debug("extracted record",
		"path", entry.Path,
		"source", vol.SourceID(),
		"kind", entry.Kind.String(),
		"fork", fork.String(),
		"start", entry.Start,
		"consumed", decoded.Consumed,
		"written", n,
		"stop", decoded.Stop.String())

	if decodeErr != nil {
		return res, fmt.Errorf("extract %s: %w", entry.Path, decodeErr)
	}
	return res, nil
}

// write places one record's bytes in its output file and returns the file's
// logical size.
func (x *Extractor) write(entry *Entry, p applesingle.Placement, data []byte) (int64, error) {
	target, err := x.sink.Open(entry, p.First)
	if err != nil {
		return 0, err
	}

	w := applesingle.NewWriter(target)
	var size int64
	if x.enveloped {
		size, err = w.WriteEnveloped(entry, p, data)
	} else {
		size, err = w.WriteRaw(p, data)
	}
	if err != nil {
		_ = target.Discard() //nolint:errcheck // best-effort cleanup
		return 0, fmt.Errorf("write %s: %w", entry.Path, err)
	}
	if err := target.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s: %w", entry.Path, err)
	}
	return size, nil
}

// ExtractAll processes records in order and calls report, if non-nil, with
// the result of each one.
//
// Unknown record kinds are skipped and failed records are counted; neither
// stops the run, and their errors are joined into the returned error. A
// volume that cannot be opened stops the run, since the records that follow
// depend on it.
func (x *Extractor) ExtractAll(ctx context.Context, entries []*Entry, report func(Result)) (Stats, error) {
	var errs []error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return x.stats, err
		}

		if entry.Kind != entrytype.KindDirectory && entry.Volume != "" && entry.Volume != x.lastVolume {
			x.lastVolume = entry.Volume
			x.stats.Volumes++
			x.log().Debug("opening volume", "volume", entry.Volume)
			x.reportProgress(StageOpeningVolume, entry.Volume, MarkerNone)
		}

		res, err := x.Extract(entry)
		if report != nil {
			report(res)
		}

		switch {
		case errors.Is(err, entrytype.ErrVolumeUnavailable):
			x.stats.Failed++
			return x.stats, err
		case errors.Is(err, entrytype.ErrUnknownEntryKind):
			x.stats.Skipped++
			x.log().Warn("skipped entry of unknown kind", "path", entry.Path)
			x.reportProgress(StageSkipped, entry.Path, MarkerUnknown)
			continue
		case err != nil:
			x.stats.Failed++
			x.stats.Bytes += uint64(res.BytesWritten) //nolint:gosec // non-negative
			x.stats.Anomalies += len(res.Anomalies)
			x.log().Warn("entry failed", "path", entry.Path, "error", err)
			if len(res.Anomalies) > 0 {
				x.reportProgress(StageAnomaly, entry.Path, MarkerAnomaly)
			}
			errs = append(errs, err)
			continue
		}

		x.tally(entry, &res)
	}
	x.log().Debug("run complete", "outputs", x.ledger.Len(), "files", x.stats.Files, "failed", x.stats.Failed)
	return x.stats, errors.Join(errs...)
}

func (x *Extractor) tally(entry *Entry, res *Result) {
	switch {
	case res.Skipped:
		x.stats.Skipped++
		x.reportProgress(StageSkipped, entry.Path, MarkerEntry)
		return
	case entry.Kind == entrytype.KindDirectory:
		x.stats.Directories++
	default:
		x.stats.Files++
	}
	x.stats.Bytes += uint64(res.BytesWritten) //nolint:gosec // non-negative
	x.stats.Anomalies += len(res.Anomalies)

	if len(res.Anomalies) > 0 {
		x.reportProgress(StageAnomaly, entry.Path, MarkerAnomaly)
		return
	}
	x.reportProgress(StageExtracting, entry.Path, MarkerEntry)
}
