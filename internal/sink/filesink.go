// Package sink manages output targets under an extraction root.
package sink

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meigma/prosel/internal/entrytype"
	"github.com/meigma/prosel/internal/pathutil"
)

// Entry is an alias for entrytype.Entry.
type Entry = entrytype.Entry

// Target is an output file being written by one catalog record.
//
// Exactly one of Commit or Discard must be called to release the target's
// file and root handles.
type Target interface {
	io.WriterAt

	// Commit closes the target and applies metadata.
	Commit() error

	// Discard closes the target without applying metadata. Bytes already
	// written are kept: partial output is preferred over none.
	Discard() error
}

// FileSink writes targets below destDir. All paths are resolved inside an
// os.Root so catalog paths cannot escape the destination.
type FileSink struct {
	destDir       string
	preserveTimes bool
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithPreserveTimes sets each output's modification time to the catalog's.
// By default, times are not preserved (files use current time).
func WithPreserveTimes(preserve bool) FileSinkOption {
	return func(s *FileSink) {
		s.preserveTimes = preserve
	}
}

// NewFileSink creates a FileSink that writes to destDir.
//
// destDir must exist. Parent directories of targets are created as needed.
func NewFileSink(destDir string, opts ...FileSinkOption) *FileSink {
	s := &FileSink{
		destDir: destDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DestDir returns the destination directory.
func (s *FileSink) DestDir() string {
	return s.destDir
}

// RelPath returns the root-relative path of an entry, in OS form.
func RelPath(entry *Entry) (string, error) {
	p := pathutil.Normalize(entry.Path)
	if p == "." || !fs.ValidPath(p) {
		return "", &fs.PathError{Op: "extract", Path: entry.Path, Err: entrytype.ErrInvalidPath}
	}
	return filepath.FromSlash(p), nil
}

// Open returns the target for an entry.
//
// With create set the file is created or truncated: the record is the first
// one for this path in the run. Otherwise the existing file is reopened for
// patching and appending, and it is an error for it to be missing.
func (s *FileSink) Open(entry *Entry, create bool) (Target, error) {
	rel, err := RelPath(entry)
	if err != nil {
		return nil, err
	}

	root, err := os.OpenRoot(s.destDir)
	if err != nil {
		return nil, fmt.Errorf("open destination root %s: %w", s.destDir, err)
	}

	flags := os.O_RDWR
	if create {
		if dir := filepath.Dir(rel); dir != "." {
			if err := root.MkdirAll(dir, 0o750); err != nil {
				_ = root.Close() //nolint:errcheck // best-effort cleanup
				return nil, fmt.Errorf("create directory %s: %w", dir, err)
			}
		}
		flags |= os.O_CREATE | os.O_TRUNC
	}

	file, err := root.OpenFile(rel, flags, 0o644)
	if err != nil {
		_ = root.Close() //nolint:errcheck // best-effort cleanup
		if !create && errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reopen %s: continued output is missing: %w", rel, err)
		}
		return nil, fmt.Errorf("open %s: %w", rel, err)
	}

	return &fileTarget{
		entry: entry,
		rel:   rel,
		file:  file,
		root:  root,
		sink:  s,
	}, nil
}

// MakeDir creates the directory for a directory entry.
func (s *FileSink) MakeDir(entry *Entry) error {
	rel, err := RelPath(entry)
	if err != nil {
		return err
	}
	root, err := os.OpenRoot(s.destDir)
	if err != nil {
		return fmt.Errorf("open destination root %s: %w", s.destDir, err)
	}
	defer root.Close()

	if err := root.MkdirAll(rel, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", rel, err)
	}
	return nil
}

// fileTarget writes directly to the final path.
type fileTarget struct {
	entry *Entry
	rel   string
	file  *os.File
	root  *os.Root
	sink  *FileSink
}

// WriteAt implements io.WriterAt.
func (t *fileTarget) WriteAt(p []byte, off int64) (int, error) {
	return t.file.WriteAt(p, off)
}

// Commit closes the file and applies metadata.
func (t *fileTarget) Commit() error {
	if err := t.file.Close(); err != nil {
		_ = t.root.Close() //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close file: %w", err)
	}

	if t.sink.preserveTimes && !t.entry.Modified.IsZero() {
		if err := t.root.Chtimes(t.rel, t.entry.Modified, t.entry.Modified); err != nil {
			_ = t.root.Close() //nolint:errcheck // best-effort cleanup
			return fmt.Errorf("chtimes: %w", err)
		}
	}

	return t.root.Close()
}

// Discard closes the file and root without applying metadata.
func (t *fileTarget) Discard() error {
	_ = t.file.Close() //nolint:errcheck // best-effort cleanup
	return t.root.Close()
}
