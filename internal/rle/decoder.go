package rle

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/meigma/prosel/internal/entrytype"
	"github.com/meigma/prosel/internal/sizing"
)

// State is the decoder state.
type State uint8

const (
	// StateExpectControl means the next input byte is a control byte.
	StateExpectControl State = iota

	// StateCopyLiteral means the next input byte is literal payload.
	StateCopyLiteral
)

// String returns the human-readable state name.
func (s State) String() string {
	switch s {
	case StateExpectControl:
		return "expect-control"
	case StateCopyLiteral:
		return "copy-literal"
	default:
		return "unknown"
	}
}

// maxPrealloc bounds the up-front output allocation for a single record.
const maxPrealloc = 1 << 20

// Decoder decodes one record's compressed stream.
type Decoder struct {
	r     io.ByteReader
	start int64
	pos   int64
	limit int64

	state     State
	remaining int

	out       []byte
	anomalies []Anomaly
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithCapacityLimit stops decoding once the absolute source position reaches
// limit. The check happens before each control or payload byte is read, so a
// repeat unit that starts just below the limit is completed. Zero disables
// the limit.
func WithCapacityLimit(limit int64) Option {
	return func(d *Decoder) {
		d.limit = limit
	}
}

// NewDecoder returns a Decoder reading from r, whose first byte sits at the
// absolute source offset start.
func NewDecoder(r io.ByteReader, start int64, opts ...Option) *Decoder {
	d := &Decoder{
		r:     r,
		start: start,
		pos:   start,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current decoder state and the pending literal count.
func (d *Decoder) State() (State, int) {
	return d.state, d.remaining
}

// Position returns the absolute source offset of the next byte to read.
func (d *Decoder) Position() int64 {
	return d.pos
}

// Decode produces up to target bytes.
//
// Decoding ends when target bytes have been produced, when the capacity
// limit is reached, or when the source runs out. Runs that would overshoot
// target are truncated. Invalid control bytes are recorded in the result and
// never abort decoding. A source that ends early yields the bytes decoded so
// far together with an error matching ErrTruncatedStream. Other read
// failures match ErrVolumeUnavailable.
func (d *Decoder) Decode(target int64) (Result, error) {
	if target < 0 {
		return Result{}, fmt.Errorf("%w: negative target length %d", entrytype.ErrInvalidEntry, target)
	}
	n, err := sizing.ToInt(target, entrytype.ErrSizeOverflow)
	if err != nil {
		return Result{}, fmt.Errorf("target length %d: %w", target, err)
	}
	d.out = make([]byte, 0, min(n, maxPrealloc))

	stop := StopTarget
	for int64(len(d.out)) < target {
		if d.limit > 0 && d.pos >= d.limit {
			stop = StopCapacity
			break
		}
		if err = d.step(target); err != nil {
			stop = StopSourceEnd
			break
		}
	}

	res := Result{
		Data:      d.out,
		Consumed:  d.pos - d.start,
		Anomalies: d.anomalies,
		Stop:      stop,
	}
	d.out = nil
	return res, err
}

// step consumes one input byte and applies the transition for the current state.
func (d *Decoder) step(target int64) error {
	b, err := d.readByte()
	if err != nil {
		return err
	}

	if d.state == StateCopyLiteral {
		d.out = append(d.out, b)
		d.remaining--
		if d.remaining == 0 {
			d.state = StateExpectControl
		}
		return nil
	}

	class, count := Classify(b)
	switch class {
	case ClassGiantLiteral, ClassShortLiteral:
		d.state = StateCopyLiteral
		d.remaining = count
	case ClassRepeat:
		v, err := d.readByte()
		if err != nil {
			return err
		}
		d.emit(v, count, target)
	case ClassZeroRun:
		d.emit(0, count, target)
	default:
		d.anomalies = append(d.anomalies, Anomaly{Offset: d.pos - 1, Control: b})
	}
	return nil
}

// emit appends count copies of v, truncated so the output never exceeds target.
func (d *Decoder) emit(v byte, count int, target int64) {
	n := min(int64(count), target-int64(len(d.out)))
	for range n {
		d.out = append(d.out, v)
	}
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w at offset %d: %w", entrytype.ErrTruncatedStream, d.pos, io.ErrUnexpectedEOF)
		}
		return 0, fmt.Errorf("%w: read at offset %d: %w", entrytype.ErrVolumeUnavailable, d.pos, err)
	}
	d.pos++
	return b, nil
}

// Decompress decodes target bytes from src starting at the absolute offset
// start. A positive limit bounds the source position (see WithCapacityLimit).
func Decompress(src io.ReaderAt, start, target, limit int64) (Result, error) {
	sr := io.NewSectionReader(src, start, 1<<62)
	d := NewDecoder(bufio.NewReader(sr), start, WithCapacityLimit(limit))
	return d.Decode(target)
}
