// Package applesingle writes extracted files either as raw data forks or as
// AppleSingle containers holding the real name, file dates, ProDOS file info
// and one or two forks at fixed, block-aligned offsets.
package applesingle

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/meigma/prosel/internal/sizing"
)

// BlockSize is the block size of the source medium. Raw outputs and forks
// are padded to multiples of it.
const BlockSize = 0x200

// Container preamble.
const (
	Magic   uint32 = 0x00051600
	Version uint32 = 0x00020000

	fillerLen = 16
)

// Entry IDs defined by the AppleSingle format.
const (
	IDDataFork     uint32 = 1
	IDResourceFork uint32 = 2
	IDRealName     uint32 = 3
	IDFileDates    uint32 = 8
	IDProDOSInfo   uint32 = 11
)

// Field placement. Every field starts on its own block; the data fork
// follows the header blocks.
const (
	NameOffset     = 0x200
	DatesOffset    = 0x400
	InfoOffset     = 0x600
	DataForkOffset = 0x800

	DatesLen = 16
	InfoLen  = 8

	// MaxNameLen is the room available for the real name.
	MaxNameLen = DatesOffset - NameOffset
)

// Header layout. Descriptors are 12 bytes (id, offset, length) and appear in
// the order Real Name, File Dates, ProDOS Info, Data Fork, Resource Fork.
const (
	entryCountOffset  = 8 + fillerLen
	descriptorsOffset = entryCountOffset + 2
	descriptorLen     = 12

	dataForkIndex     = 3
	resourceForkIndex = 4

	// DataForkLengthField is the header offset of the data fork length.
	DataForkLengthField = descriptorsOffset + dataForkIndex*descriptorLen + 8

	// ResourceForkOffsetField is the header offset of the resource fork offset.
	ResourceForkOffsetField = descriptorsOffset + resourceForkIndex*descriptorLen + 4

	// ResourceForkLengthField is the header offset of the resource fork length.
	ResourceForkLengthField = descriptorsOffset + resourceForkIndex*descriptorLen + 8
)

// Entry counts for single-fork and extended files.
const (
	EntriesSingleFork = 4
	EntriesExtended   = 5
)

// Date encoding: signed seconds from the epoch, shifted by a fixed time-zone
// correction. Unknown dates are stored as the most negative value.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	TimeZoneCorrection        = 7200
	UnknownDate        uint32 = 0x80000000
)

// ErrNotAppleSingle is returned when a container preamble does not match.
var ErrNotAppleSingle = errors.New("applesingle: bad magic or version")

// Descriptor locates one entry inside a container.
type Descriptor struct {
	ID     uint32
	Offset uint32
	Length uint32
}

// ResourceForkOffset returns where the resource fork starts for a data fork
// of dataLen bytes: the first block boundary strictly after the data fork.
func ResourceForkOffset(dataLen int64) int64 {
	return sizing.NextBoundary(DataForkOffset+dataLen, BlockSize)
}

// EncodeDate converts a catalog timestamp to the container representation.
// The timestamp's wall clock fields are used as-is; zero times are unknown.
func EncodeDate(t time.Time) uint32 {
	if t.IsZero() {
		return UnknownDate
	}
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	secs := wall.Unix() - Epoch.Unix() - TimeZoneCorrection
	if secs <= -1<<31 || secs > 1<<31-1 {
		return UnknownDate
	}
	return uint32(int32(secs)) //nolint:gosec // range checked above
}

// DecodeDate converts a container date back to a UTC timestamp.
// Unknown dates decode to the zero time.
func DecodeDate(v uint32) time.Time {
	if v == UnknownDate {
		return time.Time{}
	}
	secs := int64(int32(v)) + TimeZoneCorrection //nolint:gosec // two's complement reinterpretation
	return Epoch.Add(time.Duration(secs) * time.Second)
}

// ReadDescriptors validates the preamble of a container and returns its
// entry descriptors.
func ReadDescriptors(r io.ReaderAt) ([]Descriptor, error) {
	var pre [descriptorsOffset]byte
	if _, err := r.ReadAt(pre[:], 0); err != nil {
		return nil, fmt.Errorf("read preamble: %w", err)
	}
	if binary.BigEndian.Uint32(pre[0:4]) != Magic || binary.BigEndian.Uint32(pre[4:8]) != Version {
		return nil, ErrNotAppleSingle
	}

	n := int(binary.BigEndian.Uint16(pre[entryCountOffset:]))
	buf := make([]byte, n*descriptorLen)
	if _, err := r.ReadAt(buf, descriptorsOffset); err != nil {
		return nil, fmt.Errorf("read descriptors: %w", err)
	}
	descs := make([]Descriptor, n)
	for i := range descs {
		b := buf[i*descriptorLen:]
		descs[i] = Descriptor{
			ID:     binary.BigEndian.Uint32(b[0:4]),
			Offset: binary.BigEndian.Uint32(b[4:8]),
			Length: binary.BigEndian.Uint32(b[8:12]),
		}
	}
	return descs, nil
}
