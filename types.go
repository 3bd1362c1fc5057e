package prosel

import (
	"github.com/meigma/prosel/internal/entrytype"
	"github.com/meigma/prosel/internal/rle"
	"github.com/meigma/prosel/internal/volume"
)

// Entry describes one catalog record.
type Entry = entrytype.Entry

// Kind classifies a catalog record.
type Kind = entrytype.Kind

// Fork identifies which fork of an extended file a record carries.
type Fork = entrytype.Fork

// Anomaly is an invalid control byte found while decoding.
type Anomaly = rle.Anomaly

// StopReason tells why decoding of a record ended.
type StopReason = rle.StopReason

// CapacityFunc returns the capacity boundary of the volume at path.
type CapacityFunc = volume.CapacityFunc

// Kind constants.
const (
	KindUnknown       = entrytype.KindUnknown
	KindDirectory     = entrytype.KindDirectory
	KindFile          = entrytype.KindFile
	KindFileContinued = entrytype.KindFileContinued
)

// Fork constants.
const (
	ForkData     = entrytype.ForkData
	ForkResource = entrytype.ForkResource
)

// Stop reasons.
const (
	StopTarget    = rle.StopTarget
	StopCapacity  = rle.StopCapacity
	StopSourceEnd = rle.StopSourceEnd
)

// DefaultVolumeCapacity is the compressed region boundary of an 800K backup disc.
const DefaultVolumeCapacity = volume.DefaultCapacity

// KindFromCode maps a catalog storage code to a Kind.
func KindFromCode(code uint8) Kind {
	return entrytype.KindFromCode(code)
}
