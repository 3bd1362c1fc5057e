// Package pathutil provides path manipulation for slash-separated archive paths.
package pathutil

import "strings"

// Base returns the last element of a slash-separated path.
// If path is empty or ".", it returns ".".
func Base(path string) string {
	if path == "" || path == "." {
		return "."
	}
	// Remove trailing slash if present
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Normalize converts a catalog path to fs.ValidPath form.
//
// Leading and trailing slashes are stripped, consecutive slashes collapse and
// the empty path becomes ".". Catalog paths are absolute ProDOS paths such as
// "/DOCS/README", so "/DOCS/README" becomes "DOCS/README".
//
// "." and ".." elements are preserved so that fs.ValidPath rejects them.
func Normalize(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "."
	}

	parts := strings.Split(p, "/")
	result := parts[:0] // reuse backing array
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return "."
	}
	return strings.Join(result, "/")
}
