package volume

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/meigma/prosel/internal/entrytype"
	"github.com/meigma/prosel/internal/sizing"
)

const (
	// DefaultCacheSize is the number of decoded images kept in memory.
	DefaultCacheSize = 2

	// DefaultMaxDecodedSize bounds the inflated size of a compressed image.
	DefaultMaxDecodedSize = 64 << 20
)

// Opener opens volume images by path.
//
// Compressed images are inflated once and cached by path; plain images are
// opened per call and must be closed by the caller. An Opener is not safe
// for concurrent use.
type Opener struct {
	cache          *lru.Cache[string, []byte]
	pool           *DecompressPool
	cacheSize      int
	maxDecodedSize int64
	logger         *slog.Logger
}

// Option configures an Opener.
type Option func(*Opener)

// WithCacheSize sets how many decoded images are kept in memory.
// Values below 1 are ignored.
func WithCacheSize(n int) Option {
	return func(o *Opener) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithMaxDecodedSize bounds the inflated size of compressed images.
// Values below 1 are ignored.
func WithMaxDecodedSize(n int64) Option {
	return func(o *Opener) {
		if n > 0 {
			o.maxDecodedSize = n
		}
	}
}

// WithLogger sets the logger for volume operations.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Opener) {
		o.logger = logger
	}
}

// NewOpener creates an Opener.
func NewOpener(opts ...Option) (*Opener, error) {
	o := &Opener{
		cacheSize:      DefaultCacheSize,
		maxDecodedSize: DefaultMaxDecodedSize,
	}
	for _, opt := range opts {
		opt(o)
	}

	cache, err := lru.NewWithEvict(o.cacheSize, func(path string, data []byte) {
		o.log().Debug("evicted decoded image", "path", path, "size", len(data))
	})
	if err != nil {
		return nil, fmt.Errorf("create image cache: %w", err)
	}
	o.cache = cache
	o.pool = NewDecompressPool(uint64(o.maxDecodedSize)) //nolint:gosec // positive by construction
	return o, nil
}

func (o *Opener) log() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.logger
}

// Open returns random access to the image at path. All failures match
// entrytype.ErrVolumeUnavailable.
func (o *Opener) Open(path string) (Volume, error) {
	if data, ok := o.cache.Get(path); ok {
		return &memSource{data: data, id: "image:" + path}, nil
	}

	src, err := openFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entrytype.ErrVolumeUnavailable, err)
	}

	head := make([]byte, magicLen)
	n, err := src.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = src.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("%w: read %s: %w", entrytype.ErrVolumeUnavailable, path, err)
	}

	c := Detect(head[:n])
	if c == CompressionNone {
		o.log().Debug("opened image", "path", path, "size", src.Size())
		return src, nil
	}

	data, err := o.inflate(c, src)
	_ = src.Close() //nolint:errcheck // read-only file
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", entrytype.ErrVolumeUnavailable, path, err)
	}
	o.cache.Add(path, data)
	o.log().Debug("inflated image",
		"path", path,
		"compression", c.String(),
		"compressed", src.Size(),
		"size", len(data))
	return &memSource{data: data, id: "image:" + path}, nil
}

func (o *Opener) inflate(c Compression, src *fileSource) ([]byte, error) {
	r, release, err := o.pool.Reader(c, io.NewSectionReader(src, 0, src.Size()))
	if err != nil {
		return nil, err
	}
	defer release()

	data, err := sizing.ReadAllWithLimit(r, o.maxDecodedSize, entrytype.ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("inflate %s image: %w", c, err)
	}
	return data, nil
}

// Purge drops all decoded images.
func (o *Opener) Purge() {
	o.cache.Purge()
}

// Cached reports how many decoded images are held.
func (o *Opener) Cached() int {
	return o.cache.Len()
}
