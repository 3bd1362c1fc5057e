package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Stream is a compressed stream placed at an absolute offset in an image.
type Stream struct {
	Offset int64
	Data   []byte
}

// BuildImage returns a zero-filled volume image of size bytes holding the
// given streams.
func BuildImage(tb testing.TB, size int, streams ...Stream) []byte {
	tb.Helper()
	img := make([]byte, size)
	for _, s := range streams {
		if int(s.Offset)+len(s.Data) > size {
			tb.Fatalf("stream at %d (%d bytes) does not fit in a %d byte image", s.Offset, len(s.Data), size)
		}
		copy(img[s.Offset:], s.Data)
	}
	return img
}

// WriteImage builds an image with BuildImage and writes it to dir/name.
// It returns the image path.
func WriteImage(tb testing.TB, dir, name string, size int, streams ...Stream) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildImage(tb, size, streams...), 0o600); err != nil {
		tb.Fatalf("write image: %v", err)
	}
	return path
}
