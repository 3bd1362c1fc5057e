// Command prosel-restore lists and extracts the files of ProSel backup discs.
//
// Each argument is the catalog of one backup disc. Catalogs are processed in
// sorted order, so discs named disc1.json, disc2.json and so on continue
// into one another as they were written.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/meigma/prosel"
	"github.com/meigma/prosel/internal/catalog"
	"github.com/meigma/prosel/internal/report"
)

type config struct {
	catalogs      []string
	extract       bool
	appleSingle   bool
	dir           string
	csvPath       string
	verbose       bool
	capacity      int64
	maxImageSize  int64
	cacheSize     int
	preserveTimes bool
	debug         bool
	cpuProfile    string
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "prosel-restore:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "prosel-restore:", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

func parseFlags(args []string) (config, error) {
	var cfg config
	var maxImageSize string

	fs := flag.NewFlagSet("prosel-restore", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: prosel-restore [flags] catalog.json...")
		fmt.Fprintln(fs.Output(), "Lists and extracts data from Apple II ProSel backup disc images.")
		fs.PrintDefaults()
	}
	fs.BoolVar(&cfg.extract, "x", false, "extract files from the backup discs")
	fs.BoolVar(&cfg.appleSingle, "s", false, "extract as AppleSingle")
	fs.StringVar(&cfg.dir, "d", ".", "extract to directory")
	fs.StringVar(&cfg.csvPath, "o", "", "CSV listing filename (default no CSV output)")
	fs.BoolVar(&cfg.verbose, "v", false, "verbose output")
	fs.Int64Var(&cfg.capacity, "capacity", prosel.DefaultVolumeCapacity, "offset where a disc's compressed data ends (0 disables)")
	fs.StringVar(&maxImageSize, "max-image-size", "64MiB", "largest inflated size of a compressed disc image")
	fs.IntVar(&cfg.cacheSize, "image-cache", 2, "number of inflated disc images kept in memory")
	fs.BoolVar(&cfg.preserveTimes, "preserve-times", false, "set modification times from the catalog")
	fs.BoolVar(&cfg.debug, "debug", false, "debug logging")
	fs.StringVar(&cfg.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	n, err := humanize.ParseBytes(maxImageSize)
	if err != nil {
		return cfg, fmt.Errorf("max-image-size: %w", err)
	}
	if n > 1<<40 {
		return cfg, fmt.Errorf("max-image-size: %s is too large", maxImageSize)
	}
	cfg.maxImageSize = int64(n) //nolint:gosec // bounded above

	cfg.catalogs = fs.Args()
	if len(cfg.catalogs) == 0 {
		fs.Usage()
		return cfg, errors.New("no backup disc catalogs given")
	}
	slices.Sort(cfg.catalogs)
	return cfg, nil
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func run(ctx context.Context, cfg config) error {
	if cfg.cpuProfile != "" {
		f, err := os.Create(cfg.cpuProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	logger := newLogger(cfg.debug)

	cats, err := catalog.LoadAll(ctx, cfg.catalogs, 0)
	if err != nil {
		return err
	}
	volumeName := cats[0].VolumeName

	var csvOut *report.Writer
	if cfg.csvPath != "" {
		csvOut, err = report.Create(cfg.csvPath)
		if err != nil {
			return fmt.Errorf("cannot create CSV report %s: %w", cfg.csvPath, err)
		}
		defer csvOut.Close()
	}

	l := newLister(os.Stdout, cfg.verbose, csvOut)
	if cfg.verbose {
		l.banner(volumeName)
	}

	if !cfg.extract {
		for _, e := range catalog.Entries(cats) {
			if err := l.list(prosel.Result{Entry: e}); err != nil {
				return err
			}
			l.marker(prosel.MarkerEntry)
		}
		fmt.Fprintln(os.Stdout)
		return closeReport(csvOut)
	}

	root := prosel.OutputRoot(cfg.dir, volumeName)
	if root != filepath.Clean(cfg.dir) {
		if err := os.RemoveAll(root); err != nil {
			return fmt.Errorf("clear %s: %w", root, err)
		}
	}

	x, err := prosel.NewExtractor(root,
		prosel.WithEnveloped(cfg.appleSingle),
		prosel.WithVolumeCapacity(cfg.capacity),
		prosel.WithVolumeCacheSize(cfg.cacheSize),
		prosel.WithMaxDecodedImageSize(cfg.maxImageSize),
		prosel.WithPreserveTimes(cfg.preserveTimes),
		prosel.WithLogger(logger),
		prosel.WithProgress(func(ev prosel.ProgressEvent) { l.marker(ev.Marker) }),
	)
	if err != nil {
		return err
	}
	defer x.Close()

	var listErr error
	stats, runErr := x.ExtractAll(ctx, catalog.Entries(cats), func(r prosel.Result) {
		if err := l.list(r); err != nil && listErr == nil {
			listErr = err
		}
	})

	fmt.Fprintln(os.Stdout)
	l.summary(stats)

	return errors.Join(runErr, listErr, closeReport(csvOut))
}

func closeReport(w *report.Writer) error {
	if w == nil {
		return nil
	}
	return w.Close()
}
