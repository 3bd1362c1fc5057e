// Package volume provides random access to backup disc images.
//
// Images may be stored plain or compressed with zstd, gzip or lz4. Plain
// images are read directly from disk; compressed images are inflated into
// memory once and kept in a small LRU so that every catalog record on the
// same volume does not inflate it again.
package volume

import (
	"fmt"
	"io"
	"os"
)

// ByteSource provides random access to a volume image.
//
// SourceID must return a stable identifier for the underlying content.
type ByteSource interface {
	io.ReaderAt
	Size() int64
	SourceID() string
}

// Volume is a ByteSource that must be closed after use.
type Volume interface {
	ByteSource
	Close() error
}

// fileSource reads a plain image from disk.
type fileSource struct {
	f    *os.File
	size int64
	path string
}

func openFile(path string) (*fileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close() //nolint:errcheck // best-effort cleanup
		return nil, err
	}
	if !info.Mode().IsRegular() {
		_ = f.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("%s: not a regular file", path)
	}
	return &fileSource{f: f, size: info.Size(), path: path}, nil
}

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

func (s *fileSource) Size() int64 {
	return s.size
}

func (s *fileSource) SourceID() string {
	return "file:" + s.path
}

func (s *fileSource) Close() error {
	return s.f.Close()
}

// memSource serves an inflated image from memory.
type memSource struct {
	data []byte
	id   string
}

func (s *memSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("read at %d: negative offset", off)
	}
	if off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *memSource) Size() int64 {
	return int64(len(s.data))
}

func (s *memSource) SourceID() string {
	return s.id
}

// Close is a no-op: the bytes belong to the image cache.
func (s *memSource) Close() error {
	return nil
}
