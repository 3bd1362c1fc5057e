package prosel

import (
	"log/slog"

	"github.com/meigma/prosel/internal/volume"
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithEnveloped writes files as AppleSingle containers instead of plain data
// forks. Plain output drops resource forks.
func WithEnveloped(enveloped bool) Option {
	return func(x *Extractor) {
		x.enveloped = enveloped
	}
}

// WithVolumeCapacity sets the source offset at which continuation records
// stop decoding, for every volume. Zero or less disables the boundary.
//
// Default: [DefaultVolumeCapacity].
func WithVolumeCapacity(n int64) Option {
	return func(x *Extractor) {
		x.capacity = volume.FixedCapacity(n)
	}
}

// WithCapacityFunc sets a per-volume capacity boundary. Use it when a backup
// mixes media of different sizes.
func WithCapacityFunc(fn CapacityFunc) Option {
	return func(x *Extractor) {
		x.capacity = fn
	}
}

// WithLogger sets the logger for extraction operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Extractor) {
		x.logger = logger
	}
}

// WithProgress sets a callback to receive progress updates.
func WithProgress(fn ProgressFunc) Option {
	return func(x *Extractor) {
		x.progress = fn
	}
}

// WithVolumeCacheSize sets how many inflated volume images are kept in
// memory. Only compressed images are cached.
func WithVolumeCacheSize(n int) Option {
	return func(x *Extractor) {
		x.volumeOpts = append(x.volumeOpts, volume.WithCacheSize(n))
	}
}

// WithMaxDecodedImageSize bounds the inflated size of a compressed volume image.
func WithMaxDecodedImageSize(n int64) Option {
	return func(x *Extractor) {
		x.volumeOpts = append(x.volumeOpts, volume.WithMaxDecodedSize(n))
	}
}

// WithPreserveTimes sets each output file's modification time to the
// catalog's.
func WithPreserveTimes(preserve bool) Option {
	return func(x *Extractor) {
		x.preserveTimes = preserve
	}
}
