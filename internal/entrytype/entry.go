// Package entrytype defines the catalog record model shared by the extraction packages.
package entrytype

import (
	"fmt"
	"time"
)

// Kind classifies a catalog entry.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindDirectory
	KindFile
	KindFileContinued
)

// Storage codes as recorded by the backup catalog.
const (
	CodeDirectory     uint8 = 0xC0
	CodeFile          uint8 = 0x80
	CodeFileContinued uint8 = 0x82

	// StorageExtended is the ProDOS storage type of a file with both a data
	// and a resource fork.
	StorageExtended uint8 = 5
)

// KindFromCode maps a catalog storage code to a Kind.
// Unrecognized codes map to KindUnknown.
func KindFromCode(code uint8) Kind {
	switch code {
	case CodeDirectory:
		return KindDirectory
	case CodeFile:
		return KindFile
	case CodeFileContinued:
		return KindFileContinued
	default:
		return KindUnknown
	}
}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindFileContinued:
		return "file-continued"
	default:
		return "unknown"
	}
}

// Fork identifies which fork of an extended file a record carries.
type Fork uint8

const (
	ForkData Fork = iota
	ForkResource
)

// String returns the human-readable name of the fork.
func (f Fork) String() string {
	switch f {
	case ForkData:
		return "data"
	case ForkResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Entry describes one catalog record: a directory, a file, or one fork of
// an extended file. Entries are read-only; all mutable extraction state
// lives in the continuation ledger.
type Entry struct {
	// Path is the output-relative path, slash separated (e.g. "/DOCS/README").
	Path string

	// Kind is the record kind.
	Kind Kind

	// Extended reports whether the file has both a data and a resource fork.
	// An extended file is described by two records: data first, then resource.
	Extended bool

	// Fork selects which fork this record encodes. Only meaningful when
	// Extended is set.
	Fork Fork

	// Volume is the path of the disc image holding this record's compressed bytes.
	Volume string

	// Start is the byte offset in Volume where the compressed stream begins.
	Start int64

	// Length is the full decompressed length of the fork.
	Length int64

	// Created and Modified are the catalog timestamps (minute resolution).
	Created  time.Time
	Modified time.Time

	// Access, FileType and AuxType are the ProDOS file attributes.
	Access   uint16
	FileType uint16
	AuxType  uint32
}

// IsResourceFork reports whether the record carries the resource fork of an
// extended file.
func (e *Entry) IsResourceFork() bool {
	return e.Extended && e.Fork == ForkResource
}

// ForkLabel returns "Data fork" or "Resource fork" for extended files and ""
// otherwise.
func (e *Entry) ForkLabel() string {
	if !e.Extended {
		return ""
	}
	if e.Fork == ForkResource {
		return "Resource fork"
	}
	return "Data fork"
}

// Validate checks the structural invariants of a record.
func (e *Entry) Validate() error {
	if e.Path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidEntry)
	}
	if e.Kind == KindDirectory {
		return nil
	}
	if e.Length < 0 {
		return fmt.Errorf("%w: %s: negative length %d", ErrInvalidEntry, e.Path, e.Length)
	}
	if e.Start < 0 {
		return fmt.Errorf("%w: %s: negative start offset %d", ErrInvalidEntry, e.Path, e.Start)
	}
	if e.Fork > ForkResource {
		return fmt.Errorf("%w: %s: invalid fork %d", ErrInvalidEntry, e.Path, e.Fork)
	}
	return nil
}
