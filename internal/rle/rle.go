// Package rle decodes the run-length compressed stream stored on backup volumes.
//
// Each compression unit starts with a control byte whose numeric range selects
// the decoding rule:
//
//	0x00       giant literal: the next 16384 bytes are copied verbatim
//	0x01-0x3F  invalid, recorded as an anomaly and skipped
//	0x40-0x7F  short literal: the next (b-63) bytes are copied verbatim
//	0x80-0xBF  repeat: the next byte is emitted (b-125) times
//	0xC0-0xFF  zero run: (b-189) zero bytes are emitted
//
// The decoder is an explicit state machine over two states: ExpectControl,
// where the next input byte is interpreted as a control byte, and
// CopyLiteral, where input bytes are payload copied one at a time until the
// pending literal count is exhausted.
package rle

import (
	"fmt"

	"github.com/meigma/prosel/internal/entrytype"
)

// GiantLiteralLen is the payload length selected by control byte 0x00.
const GiantLiteralLen = 0x4000

const (
	shortLiteralMin = 0x40
	repeatMin       = 0x80
	zeroRunMin      = 0xC0

	shortLiteralBias = 0x3F
	repeatBias       = 0x7D
	zeroRunBias      = 0xBD
)

// Class is the opcode class selected by a control byte.
type Class uint8

const (
	ClassGiantLiteral Class = iota
	ClassInvalid
	ClassShortLiteral
	ClassRepeat
	ClassZeroRun
)

// String returns the human-readable name of the class.
func (c Class) String() string {
	switch c {
	case ClassGiantLiteral:
		return "giant-literal"
	case ClassInvalid:
		return "invalid"
	case ClassShortLiteral:
		return "short-literal"
	case ClassRepeat:
		return "repeat"
	case ClassZeroRun:
		return "zero-run"
	default:
		return "unknown"
	}
}

// Classify returns the opcode class of a control byte and its counter.
// The counter is zero for ClassInvalid.
func Classify(b byte) (Class, int) {
	switch {
	case b >= zeroRunMin:
		return ClassZeroRun, int(b) - zeroRunBias
	case b >= repeatMin:
		return ClassRepeat, int(b) - repeatBias
	case b >= shortLiteralMin:
		return ClassShortLiteral, int(b) - shortLiteralBias
	case b == 0:
		return ClassGiantLiteral, GiantLiteralLen
	default:
		return ClassInvalid, 0
	}
}

// Anomaly records an invalid control byte found in the stream.
type Anomaly struct {
	// Offset is the absolute source offset of the control byte.
	Offset int64

	// Control is the offending byte.
	Control byte
}

// Error implements error.
func (a Anomaly) Error() string {
	return fmt.Sprintf("%v: $%02X at offset %d", entrytype.ErrDecodeAnomaly, a.Control, a.Offset)
}

// Is reports whether target is ErrDecodeAnomaly.
func (a Anomaly) Is(target error) bool {
	return target == entrytype.ErrDecodeAnomaly
}

// StopReason explains why decoding ended.
type StopReason uint8

const (
	// StopTarget means the requested number of bytes was produced.
	StopTarget StopReason = iota

	// StopCapacity means the source position reached the volume capacity
	// limit before the target was produced. The remainder continues on the
	// next volume.
	StopCapacity

	// StopSourceEnd means the source ran out of bytes.
	StopSourceEnd
)

// String returns the human-readable stop reason.
func (r StopReason) String() string {
	switch r {
	case StopTarget:
		return "target"
	case StopCapacity:
		return "capacity"
	case StopSourceEnd:
		return "source-end"
	default:
		return "unknown"
	}
}

// Result is the outcome of decoding one record.
type Result struct {
	// Data holds the decompressed bytes.
	Data []byte

	// Consumed is the number of source bytes read (control and payload).
	Consumed int64

	// Anomalies lists invalid control bytes in stream order.
	Anomalies []Anomaly

	// Stop tells why decoding ended.
	Stop StopReason
}
