// Package prosel extracts files from ProSel backup disc images.
//
// A backup is a set of disc images. Each image holds a catalog of records
// and a region of run-length compressed file data. A file whose compressed
// bytes do not fit on one disc continues on the next, and an extended file
// (one with both a data and a resource fork) is stored as two records.
//
// The [Extractor] decodes each record and places its bytes in an output
// tree, either as plain files padded to 512-byte blocks or as AppleSingle
// containers carrying the name, dates and ProDOS file information.
//
// # Quick Start
//
//	x, err := prosel.NewExtractor(prosel.OutputRoot("out", "/HARD1"),
//	    prosel.WithEnveloped(true),
//	)
//	if err != nil {
//	    return err
//	}
//	defer x.Close()
//
//	stats, err := x.ExtractAll(ctx, entries, func(r prosel.Result) {
//	    fmt.Println(r.Entry.Path, r.BytesWritten)
//	})
//
// Records must be supplied in catalog order, with discs in backup order: a
// continuation record relies on the earlier disc having written the first
// part of the file in the same run.
//
// # Volume Images
//
// Disc images may be stored compressed with zstd, gzip or lz4. They are
// detected by their leading bytes and inflated in memory on first use.
// See [WithVolumeCacheSize] and [WithMaxDecodedImageSize].
package prosel
