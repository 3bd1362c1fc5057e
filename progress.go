package prosel

import "github.com/meigma/prosel/internal/entrytype"

// Re-export progress types from entrytype.
type (
	// ProgressEvent represents a progress update during extraction.
	ProgressEvent = entrytype.ProgressEvent

	// ProgressStage identifies the current phase of an operation.
	ProgressStage = entrytype.ProgressStage

	// ProgressFunc receives progress updates during extraction.
	ProgressFunc = entrytype.ProgressFunc

	// Marker is the one-character console marker of an event.
	Marker = entrytype.Marker
)

// Re-export progress stage constants.
const (
	// StageOpeningVolume indicates a new source volume is being opened.
	StageOpeningVolume = entrytype.StageOpeningVolume

	// StageExtracting indicates a record has been extracted.
	StageExtracting = entrytype.StageExtracting

	// StageAnomaly indicates a decode anomaly was recorded.
	StageAnomaly = entrytype.StageAnomaly

	// StageSkipped indicates a record was skipped.
	StageSkipped = entrytype.StageSkipped
)

// Re-export marker constants.
const (
	MarkerNone    = entrytype.MarkerNone
	MarkerEntry   = entrytype.MarkerEntry
	MarkerAnomaly = entrytype.MarkerAnomaly
	MarkerUnknown = entrytype.MarkerUnknown
)
