package prosel

import (
	"io/fs"
	"path/filepath"

	"github.com/meigma/prosel/internal/pathutil"
)

// NormalizePath converts a catalog path to the slash-separated,
// root-relative form used as the continuation key.
//
// "/DOCS//README/" becomes "DOCS/README"; the empty path becomes ".".
func NormalizePath(p string) string {
	return pathutil.Normalize(p)
}

// OutputRoot returns the directory a backup of volumeName is extracted to:
// the volume name joined under dir. Names that would leave dir are reduced
// to their last element.
func OutputRoot(dir, volumeName string) string {
	name := pathutil.Normalize(volumeName)
	if !fs.ValidPath(name) {
		name = pathutil.Base(name)
	}
	if name == "." || name == ".." {
		return filepath.Clean(dir)
	}
	return filepath.Join(dir, filepath.FromSlash(name))
}
