package entrytype

import "errors"

// Sentinel errors for extraction operations.
var (
	// ErrDecodeAnomaly is matched by invalid control bytes found while decoding.
	ErrDecodeAnomaly = errors.New("prosel: invalid control byte")

	// ErrUnknownEntryKind is returned for catalog records of an unrecognized kind.
	ErrUnknownEntryKind = errors.New("prosel: unknown entry kind")

	// ErrInvalidEntry is returned when a catalog record violates its invariants.
	ErrInvalidEntry = errors.New("prosel: invalid entry")

	// ErrInvalidPath is returned when an entry path cannot be placed under the output root.
	ErrInvalidPath = errors.New("prosel: invalid path")

	// ErrTruncatedStream is returned when a volume ends before a record is fully decoded.
	ErrTruncatedStream = errors.New("prosel: truncated compressed stream")

	// ErrVolumeUnavailable is returned when a source volume cannot be opened or read.
	ErrVolumeUnavailable = errors.New("prosel: volume unavailable")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("prosel: size overflow")
)
