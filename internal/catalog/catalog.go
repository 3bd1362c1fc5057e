// Package catalog loads backup catalogs.
//
// A catalog describes one backup disc: the backed-up volume's name, the disc
// image holding the compressed data and the ordered catalog records. It is
// stored as JSON next to the image by the tool that reads the disc's
// directory blocks.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/prosel/internal/entrytype"
)

// DefaultConcurrency is the number of catalogs LoadAll parses at once.
const DefaultConcurrency = 4

// ErrNoImage is returned when a catalog with file records names no image.
var ErrNoImage = errors.New("catalog: no disc image")

// Catalog is one disc's catalog.
type Catalog struct {
	// Path is the file the catalog was loaded from.
	Path string

	// VolumeName is the name of the backed-up volume, e.g. "/HARD1".
	VolumeName string

	// Image is the path of the disc image, resolved against the catalog's
	// directory.
	Image string

	// Disc is the disc's number in the backup set, starting at 1.
	Disc int

	// Entries are the catalog records in catalog order. Each file record's
	// Volume is set to Image.
	Entries []*entrytype.Entry
}

type catalogJSON struct {
	VolumeName string      `json:"volume_name"`
	Image      string      `json:"image"`
	Disc       int         `json:"disc"`
	Entries    []entryJSON `json:"entries"`
}

type entryJSON struct {
	Path        string    `json:"path"`
	Code        uint8     `json:"code"`
	StorageType uint8     `json:"storage_type"`
	Fork        uint8     `json:"fork"`
	Start       int64     `json:"start"`
	Length      int64     `json:"length"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Access      uint16    `json:"access"`
	FileType    uint16    `json:"file_type"`
	AuxType     uint32    `json:"aux_type"`
}

func (e *entryJSON) entry(image string) *entrytype.Entry {
	out := &entrytype.Entry{
		Path:     e.Path,
		Kind:     entrytype.KindFromCode(e.Code),
		Extended: e.StorageType == entrytype.StorageExtended,
		Start:    e.Start,
		Length:   e.Length,
		Created:  e.Created,
		Modified: e.Modified,
		Access:   e.Access,
		FileType: e.FileType,
		AuxType:  e.AuxType,
	}
	if out.Extended && e.Fork == 1 {
		out.Fork = entrytype.ForkResource
	}
	if out.Kind != entrytype.KindDirectory {
		out.Volume = image
	}
	return out
}

// Load reads the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes a catalog. path is used to resolve the image location and
// in error messages.
func Parse(path string, data []byte) (*Catalog, error) {
	var raw catalogJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	image := raw.Image
	if image != "" && !filepath.IsAbs(image) {
		image = filepath.Join(filepath.Dir(path), filepath.FromSlash(image))
	}

	c := &Catalog{
		Path:       path,
		VolumeName: raw.VolumeName,
		Image:      image,
		Disc:       raw.Disc,
		Entries:    make([]*entrytype.Entry, 0, len(raw.Entries)),
	}
	for i := range raw.Entries {
		e := raw.Entries[i].entry(image)
		if e.Kind != entrytype.KindDirectory && image == "" {
			return nil, fmt.Errorf("%s: record %d (%s): %w", path, i, e.Path, ErrNoImage)
		}
		c.Entries = append(c.Entries, e)
	}
	return c, nil
}

// LoadAll loads catalogs concurrently. The result is in the order of paths.
// The first failure cancels the remaining loads.
func LoadAll(ctx context.Context, paths []string, concurrency int) ([]*Catalog, error) {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	out := make([]*Catalog, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := Load(path)
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Entries returns the records of all catalogs in order.
func Entries(catalogs []*Catalog) []*entrytype.Entry {
	var n int
	for _, c := range catalogs {
		n += len(c.Entries)
	}
	out := make([]*entrytype.Entry, 0, n)
	for _, c := range catalogs {
		out = append(out, c.Entries...)
	}
	return out
}
