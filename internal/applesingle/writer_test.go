package applesingle

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/prosel/internal/entrytype"
)

func newTarget(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "target"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func readAll(t *testing.T, f *os.File) []byte {
	t.Helper()
	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	return data
}

func testEntry(path string, length int64) *entrytype.Entry {
	return &entrytype.Entry{
		Path:     path,
		Kind:     entrytype.KindFile,
		Length:   length,
		Created:  time.Date(1991, time.March, 4, 10, 30, 0, 0, time.UTC),
		Modified: time.Date(1992, time.June, 7, 18, 5, 0, 0, time.UTC),
		Access:   0xC3,
		FileType: 0x04,
		AuxType:  0x2000,
	}
}

func TestEncodeDate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), EncodeDate(time.Date(2000, time.January, 1, 2, 0, 0, 0, time.UTC)))
	assert.Equal(t, uint32(0xFFFFE3E0), EncodeDate(Epoch), "epoch is shifted by the time-zone correction")
	assert.Equal(t, UnknownDate, EncodeDate(time.Time{}))

	ts := time.Date(1987, time.September, 14, 8, 45, 0, 0, time.UTC)
	assert.True(t, ts.Equal(DecodeDate(EncodeDate(ts))))
	assert.True(t, DecodeDate(UnknownDate).IsZero())
}

func TestHeaderLayout(t *testing.T) {
	t.Parallel()

	e := testEntry("/DOCS/README", 5)
	h := HeaderFromEntry(e)
	buf, err := h.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, buf, DataForkOffset)

	assert.Equal(t, []byte{0x00, 0x05, 0x16, 0x00, 0x00, 0x02, 0x00, 0x00}, buf[:8])
	assert.Equal(t, make([]byte, 16), buf[8:24])
	assert.Equal(t, uint16(EntriesSingleFork), binary.BigEndian.Uint16(buf[24:26]))

	descs, err := ReadDescriptors(bytes.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, []Descriptor{
		{ID: IDRealName, Offset: 0x200, Length: 6},
		{ID: IDFileDates, Offset: 0x400, Length: 16},
		{ID: IDProDOSInfo, Offset: 0x600, Length: 8},
		{ID: IDDataFork, Offset: 0x800, Length: 5},
	}, descs)

	assert.Equal(t, []byte("README"), buf[NameOffset:NameOffset+6])
	assert.Equal(t, EncodeDate(e.Created), binary.BigEndian.Uint32(buf[DatesOffset:]))
	assert.Equal(t, EncodeDate(e.Modified), binary.BigEndian.Uint32(buf[DatesOffset+4:]))
	assert.Equal(t, UnknownDate, binary.BigEndian.Uint32(buf[DatesOffset+8:]))
	assert.Equal(t, UnknownDate, binary.BigEndian.Uint32(buf[DatesOffset+12:]))
	assert.Equal(t, []byte{0x00, 0xC3, 0x00, 0x04, 0x00, 0x00, 0x20, 0x00}, buf[InfoOffset:InfoOffset+8])
}

func TestHeaderFieldOffsets(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 70, DataForkLengthField)
	assert.Equal(t, 78, ResourceForkOffsetField)
	assert.Equal(t, 82, ResourceForkLengthField)
}

func TestResourceForkOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0xA00), ResourceForkOffset(0))
	assert.Equal(t, int64(0xA00), ResourceForkOffset(5))
	assert.Equal(t, int64(0xC00), ResourceForkOffset(0x200))
	assert.Equal(t, int64(0xC00), ResourceForkOffset(0x201))
}

func TestReadDescriptorsRejectsRawData(t *testing.T) {
	t.Parallel()

	_, err := ReadDescriptors(bytes.NewReader(make([]byte, 64)))
	assert.ErrorIs(t, err, ErrNotAppleSingle)
}

func TestWriteRawPads(t *testing.T) {
	t.Parallel()

	f := newTarget(t)
	w := NewWriter(f)

	size, err := w.WriteRaw(Placement{First: true, Final: true}, []byte("ABCD\x00"))
	require.NoError(t, err)
	assert.Equal(t, int64(512), size)

	data := readAll(t, f)
	require.Len(t, data, 512)
	assert.Equal(t, []byte("ABCD\x00"), data[:5])
	assert.Equal(t, make([]byte, 507), data[5:])
}

func TestWriteRawPaddingIdempotent(t *testing.T) {
	t.Parallel()

	f := newTarget(t)
	w := NewWriter(f)

	_, err := w.WriteRaw(Placement{First: true, Final: true}, bytes.Repeat([]byte{1}, 700))
	require.NoError(t, err)
	require.Len(t, readAll(t, f), 1024)

	size, err := w.WriteRaw(Placement{Resume: 1024, Final: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), size)
	assert.Len(t, readAll(t, f), 1024)
}

func TestWriteRawAlignedNotPadded(t *testing.T) {
	t.Parallel()

	f := newTarget(t)
	size, err := NewWriter(f).WriteRaw(Placement{First: true, Final: true}, make([]byte, 512))
	require.NoError(t, err)
	assert.Equal(t, int64(512), size)
	assert.Len(t, readAll(t, f), 512)
}

func TestWriteRawContinuation(t *testing.T) {
	t.Parallel()

	f := newTarget(t)
	w := NewWriter(f)

	size, err := w.WriteRaw(Placement{First: true}, []byte("ABC"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)
	assert.Len(t, readAll(t, f), 3, "continued records are not padded")

	size, err = w.WriteRaw(Placement{Resume: 3, Final: true}, []byte("DEF"))
	require.NoError(t, err)
	assert.Equal(t, int64(512), size)

	data := readAll(t, f)
	assert.Equal(t, []byte("ABCDEF"), data[:6])
	assert.Len(t, data, 512)
}

func TestWriteEnvelopedSingleFork(t *testing.T) {
	t.Parallel()

	f := newTarget(t)
	e := testEntry("/HELLO", 5)

	size, err := NewWriter(f).WriteEnveloped(e, Placement{First: true, Final: true}, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(0xA00), size)

	data := readAll(t, f)
	require.Len(t, data, 0xA00)
	assert.Equal(t, []byte("hello"), data[0x800:0x805])

	descs, err := ReadDescriptors(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, descs, EntriesSingleFork)
	assert.Equal(t, uint32(5), descs[dataForkIndex].Length)
}

func TestWriteEnvelopedContinuation(t *testing.T) {
	t.Parallel()

	f := newTarget(t)
	w := NewWriter(f)
	e := testEntry("/BIG", 11)

	_, err := w.WriteEnveloped(e, Placement{First: true}, []byte("HELLO"))
	require.NoError(t, err)

	// The next volume's record resumes after the five bytes already written
	// and must not rewrite the header.
	cont := *e
	cont.Modified = time.Time{}
	_, err = w.WriteEnveloped(&cont, Placement{Resume: 5, Final: true}, []byte(" WORLD"))
	require.NoError(t, err)

	data := readAll(t, f)
	require.Len(t, data, 0xA00)
	assert.Equal(t, []byte("HELLO WORLD"), data[0x800:0x80B])
	assert.Equal(t, EncodeDate(e.Modified), binary.BigEndian.Uint32(data[DatesOffset+4:]))
	assert.Equal(t, uint32(11), binary.BigEndian.Uint32(data[DataForkLengthField:]))
}

func TestWriteEnvelopedExtended(t *testing.T) {
	t.Parallel()

	f := newTarget(t)
	w := NewWriter(f)

	dataRec := testEntry("/APP", 5)
	dataRec.Extended = true
	dataRec.Fork = entrytype.ForkData

	size, err := w.WriteEnveloped(dataRec, Placement{First: true, Final: true}, []byte("DATA!"))
	require.NoError(t, err)
	assert.Equal(t, int64(0xA00), size)

	resRec := *dataRec
	resRec.Fork = entrytype.ForkResource
	resRec.Length = 3
	size, err = w.WriteEnveloped(&resRec, Placement{DataLength: 5, Final: true}, []byte("RES"))
	require.NoError(t, err)
	assert.Equal(t, int64(0xC00), size)

	data := readAll(t, f)
	require.Len(t, data, 0xC00)

	descs, err := ReadDescriptors(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, descs, EntriesExtended)
	assert.Equal(t, Descriptor{ID: IDDataFork, Offset: 0x800, Length: 5}, descs[dataForkIndex])
	assert.Equal(t, Descriptor{ID: IDResourceFork, Offset: 0xA00, Length: 3}, descs[resourceForkIndex])

	assert.Equal(t, uint32(5), binary.BigEndian.Uint32(data[DataForkLengthField:]))
	assert.Equal(t, uint32(3), binary.BigEndian.Uint32(data[ResourceForkLengthField:]))
	assert.Equal(t, []byte("DATA!"), data[0x800:0x805])
	assert.Equal(t, make([]byte, 0xA00-0x805), data[0x805:0xA00])
	assert.Equal(t, []byte("RES"), data[0xA00:0xA03])
}

func TestWriteEnvelopedExtendedAlignedDataFork(t *testing.T) {
	t.Parallel()

	f := newTarget(t)
	w := NewWriter(f)

	dataRec := testEntry("/ALIGNED", 512)
	dataRec.Extended = true
	_, err := w.WriteEnveloped(dataRec, Placement{First: true, Final: true}, bytes.Repeat([]byte{0xEE}, 512))
	require.NoError(t, err)

	resRec := *dataRec
	resRec.Fork = entrytype.ForkResource
	resRec.Length = 1
	_, err = w.WriteEnveloped(&resRec, Placement{DataLength: 512, Final: true}, []byte{0x99})
	require.NoError(t, err)

	data := readAll(t, f)
	descs, err := ReadDescriptors(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint32(0xC00), descs[resourceForkIndex].Offset)
	assert.Equal(t, byte(0x99), data[0xC00])
	assert.Len(t, data, 0xE00)
}

func TestHeaderNameTruncated(t *testing.T) {
	t.Parallel()

	h := Header{Name: string(bytes.Repeat([]byte{'N'}, MaxNameLen+10))}
	descs, err := h.Descriptors()
	require.NoError(t, err)
	assert.Equal(t, uint32(MaxNameLen), descs[0].Length)
}
