package prosel

import "github.com/meigma/prosel/internal/entrytype"

// Errors re-exported from entrytype.
var (
	// ErrDecodeAnomaly is matched by invalid control bytes found while decoding.
	// Anomalies never abort a record; they are reported in [Result.Anomalies].
	ErrDecodeAnomaly = entrytype.ErrDecodeAnomaly

	// ErrUnknownEntryKind is returned for catalog records of an unrecognized kind.
	ErrUnknownEntryKind = entrytype.ErrUnknownEntryKind

	// ErrInvalidEntry is returned when a catalog record violates its invariants.
	ErrInvalidEntry = entrytype.ErrInvalidEntry

	// ErrInvalidPath is returned when an entry path cannot be placed under the output root.
	ErrInvalidPath = entrytype.ErrInvalidPath

	// ErrTruncatedStream is returned when a volume ends before a record is fully decoded.
	ErrTruncatedStream = entrytype.ErrTruncatedStream

	// ErrVolumeUnavailable is returned when a source volume cannot be opened or read.
	ErrVolumeUnavailable = entrytype.ErrVolumeUnavailable

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = entrytype.ErrSizeOverflow
)
