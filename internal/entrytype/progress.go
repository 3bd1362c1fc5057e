package entrytype

// ProgressEvent represents a progress update during extraction.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the entry currently being processed, if applicable.
	Path string

	// Marker is the one-character console marker for this event.
	Marker Marker

	// BytesDone is the number of bytes written so far in the run.
	BytesDone uint64

	// FilesDone is the number of records processed so far in the run.
	FilesDone int

	// Anomalies is the number of decode anomalies seen so far in the run.
	Anomalies int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages for extraction.
const (
	// StageOpeningVolume indicates a new source volume is being opened.
	StageOpeningVolume ProgressStage = iota

	// StageExtracting indicates a record has been extracted.
	StageExtracting

	// StageAnomaly indicates a decode anomaly was recorded.
	StageAnomaly

	// StageSkipped indicates a record was skipped.
	StageSkipped
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageOpeningVolume:
		return "opening volume"
	case StageExtracting:
		return "extracting"
	case StageAnomaly:
		return "anomaly"
	case StageSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Marker is a lightweight console progress marker.
type Marker byte

// Markers emitted during extraction.
const (
	MarkerNone    Marker = 0
	MarkerEntry   Marker = '.'
	MarkerAnomaly Marker = '!'
	MarkerUnknown Marker = '?'
)

// ProgressFunc receives progress updates during operations.
type ProgressFunc func(ProgressEvent)
