package applesingle

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/meigma/prosel/internal/entrytype"
	"github.com/meigma/prosel/internal/pathutil"
	"github.com/meigma/prosel/internal/sizing"
)

// Header holds the metadata written into a container's header blocks.
type Header struct {
	Name     string
	Created  time.Time
	Modified time.Time
	Access   uint16
	FileType uint16
	AuxType  uint32

	// DataLength is the data fork length announced in the header. It is
	// patched once the data fork is complete.
	DataLength int64

	// Extended adds a resource fork descriptor.
	Extended bool
}

// HeaderFromEntry builds a header from a catalog record.
func HeaderFromEntry(e *entrytype.Entry) Header {
	h := Header{
		Name:     pathutil.Base(e.Path),
		Created:  e.Created,
		Modified: e.Modified,
		Access:   e.Access,
		FileType: e.FileType,
		AuxType:  e.AuxType,
		Extended: e.Extended,
	}
	if !e.IsResourceFork() {
		h.DataLength = e.Length
	}
	return h
}

// Descriptors returns the entry descriptors for the header.
func (h *Header) Descriptors() ([]Descriptor, error) {
	dataLen, err := sizing.ToUint32(h.DataLength, entrytype.ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	name := h.nameBytes()
	descs := []Descriptor{
		{ID: IDRealName, Offset: NameOffset, Length: uint32(len(name))}, //nolint:gosec // bounded by MaxNameLen
		{ID: IDFileDates, Offset: DatesOffset, Length: DatesLen},
		{ID: IDProDOSInfo, Offset: InfoOffset, Length: InfoLen},
		{ID: IDDataFork, Offset: DataForkOffset, Length: dataLen},
	}
	if h.Extended {
		resOff, err := sizing.ToUint32(ResourceForkOffset(h.DataLength), entrytype.ErrSizeOverflow)
		if err != nil {
			return nil, err
		}
		descs = append(descs, Descriptor{ID: IDResourceFork, Offset: resOff})
	}
	return descs, nil
}

func (h *Header) nameBytes() []byte {
	name := []byte(h.Name)
	if len(name) > MaxNameLen {
		name = name[:MaxNameLen]
	}
	return name
}

// MarshalBinary encodes the header blocks, DataForkOffset bytes long.
func (h *Header) MarshalBinary() ([]byte, error) {
	descs, err := h.Descriptors()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, DataForkOffset)
	be := binary.BigEndian
	be.PutUint32(buf[0:], Magic)
	be.PutUint32(buf[4:], Version)
	be.PutUint16(buf[entryCountOffset:], uint16(len(descs))) //nolint:gosec // at most five descriptors
	for i, d := range descs {
		off := descriptorsOffset + i*descriptorLen
		be.PutUint32(buf[off:], d.ID)
		be.PutUint32(buf[off+4:], d.Offset)
		be.PutUint32(buf[off+8:], d.Length)
	}

	copy(buf[NameOffset:DatesOffset], h.nameBytes())

	be.PutUint32(buf[DatesOffset:], EncodeDate(h.Created))
	be.PutUint32(buf[DatesOffset+4:], EncodeDate(h.Modified))
	be.PutUint32(buf[DatesOffset+8:], UnknownDate)  // backup
	be.PutUint32(buf[DatesOffset+12:], UnknownDate) // access

	be.PutUint16(buf[InfoOffset:], h.Access)
	be.PutUint16(buf[InfoOffset+2:], h.FileType)
	be.PutUint32(buf[InfoOffset+4:], h.AuxType)
	return buf, nil
}

// Placement tells the writer where a record's bytes belong.
type Placement struct {
	// First is set when no earlier record touched the container.
	First bool

	// Resume is the number of bytes of this record's fork already written by
	// earlier records (continuation on a previous volume).
	Resume int64

	// DataLength is the total data fork length written so far. Only used when
	// placing resource fork bytes.
	DataLength int64

	// Final is set when no later record continues this fork.
	Final bool
}

// Writer places decompressed fork bytes into an output target.
type Writer struct {
	w io.WriterAt
}

// NewWriter returns a Writer over the target.
func NewWriter(w io.WriterAt) *Writer {
	return &Writer{w: w}
}

// WriteRaw writes data fork bytes at their logical position. When p.Final is
// set the target is zero-padded up to the next block boundary; targets that
// are already aligned are left unchanged. It returns the target's logical
// size after the write.
func (w *Writer) WriteRaw(p Placement, data []byte) (int64, error) {
	end := p.Resume + int64(len(data))
	if err := w.writeAt(data, p.Resume); err != nil {
		return 0, err
	}
	if !p.Final {
		return end, nil
	}
	aligned := sizing.AlignUp(end, BlockSize)
	if err := w.pad(end, aligned); err != nil {
		return 0, err
	}
	return aligned, nil
}

// WriteEnveloped writes one record's fork bytes into an AppleSingle container.
//
// The first record of a container writes the header. Data fork bytes land at
// DataForkOffset+p.Resume. Resource fork bytes land at the first block
// boundary after the data fork; the data and resource fork descriptors are
// patched in place so their lengths match what was actually written. It
// returns the container's logical size after the write.
func (w *Writer) WriteEnveloped(e *entrytype.Entry, p Placement, data []byte) (int64, error) {
	if p.First {
		h := HeaderFromEntry(e)
		if e.IsResourceFork() {
			h.DataLength = p.DataLength
		}
		if err := w.WriteHeader(&h); err != nil {
			return 0, err
		}
	}

	if e.IsResourceFork() {
		return w.writeResourceFork(p, data)
	}
	return w.writeDataFork(e, p, data)
}

// WriteHeader writes the header blocks at the start of the target.
func (w *Writer) WriteHeader(h *Header) error {
	buf, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	return w.writeAt(buf, 0)
}

func (w *Writer) writeDataFork(e *entrytype.Entry, p Placement, data []byte) (int64, error) {
	start := DataForkOffset + p.Resume
	end := start + int64(len(data))
	if err := w.writeAt(data, start); err != nil {
		return 0, err
	}
	if !p.Final {
		return end, nil
	}

	dataLen := p.Resume + int64(len(data))
	if err := w.patchUint32(DataForkLengthField, dataLen); err != nil {
		return 0, err
	}

	padTo := sizing.AlignUp(end, BlockSize)
	if e.Extended {
		padTo = ResourceForkOffset(dataLen)
		if err := w.patchUint32(ResourceForkOffsetField, padTo); err != nil {
			return 0, err
		}
	}
	if err := w.pad(end, padTo); err != nil {
		return 0, err
	}
	return padTo, nil
}

func (w *Writer) writeResourceFork(p Placement, data []byte) (int64, error) {
	forkStart := ResourceForkOffset(p.DataLength)
	if p.Resume == 0 {
		// Fill any gap left by a data fork that never reached its final record.
		if err := w.pad(DataForkOffset+p.DataLength, forkStart); err != nil {
			return 0, err
		}
	}

	start := forkStart + p.Resume
	end := start + int64(len(data))
	if err := w.writeAt(data, start); err != nil {
		return 0, err
	}

	if err := w.patchUint32(DataForkLengthField, p.DataLength); err != nil {
		return 0, err
	}
	if err := w.patchUint32(ResourceForkOffsetField, forkStart); err != nil {
		return 0, err
	}
	if err := w.patchUint32(ResourceForkLengthField, p.Resume+int64(len(data))); err != nil {
		return 0, err
	}

	if !p.Final {
		return end, nil
	}
	aligned := sizing.AlignUp(end, BlockSize)
	if err := w.pad(end, aligned); err != nil {
		return 0, err
	}
	return aligned, nil
}

func (w *Writer) patchUint32(off, v int64) error {
	u, err := sizing.ToUint32(v, entrytype.ErrSizeOverflow)
	if err != nil {
		return err
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], u)
	return w.writeAt(buf[:], off)
}

var zeroBlock [BlockSize]byte

// pad writes zero bytes over [from, to).
func (w *Writer) pad(from, to int64) error {
	for from < to {
		n := min(to-from, BlockSize)
		if err := w.writeAt(zeroBlock[:n], from); err != nil {
			return err
		}
		from += n
	}
	return nil
}

func (w *Writer) writeAt(p []byte, off int64) error {
	if len(p) == 0 {
		return nil
	}
	if _, err := w.w.WriteAt(p, off); err != nil {
		return fmt.Errorf("write at %d: %w", off, err)
	}
	return nil
}
