package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/prosel"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	cfg, err := parseFlags([]string{"-x", "-s", "-d", "out", "-max-image-size", "8MiB", "disc2.json", "disc1.json"})
	require.NoError(t, err)
	assert.True(t, cfg.extract)
	assert.True(t, cfg.appleSingle)
	assert.Equal(t, "out", cfg.dir)
	assert.Equal(t, int64(8<<20), cfg.maxImageSize)
	assert.Equal(t, prosel.DefaultVolumeCapacity, cfg.capacity)
	assert.Equal(t, []string{"disc1.json", "disc2.json"}, cfg.catalogs)
}

func TestParseFlagsErrors(t *testing.T) {
	t.Parallel()

	_, err := parseFlags([]string{"-x"})
	require.Error(t, err)

	_, err = parseFlags([]string{"-max-image-size", "lots", "disc1.json"})
	require.Error(t, err)
}

func TestFormatEntry(t *testing.T) {
	t.Parallel()

	e := &prosel.Entry{
		Path:     "/APP",
		Kind:     prosel.KindFile,
		Extended: true,
		Fork:     prosel.ForkResource,
		FileType: 0xB3,
		Modified: time.Date(1991, time.February, 3, 4, 5, 0, 0, time.UTC),
	}
	line := formatEntry(e)
	assert.Equal(t, "/APP"+spaces(42)+"Resource fork $B3   3-Feb-91  4:05", line)
}

func spaces(n int) string {
	return string(bytes.Repeat([]byte(" "), n))
}

func TestListerMarkers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := newLister(&buf, false, nil)
	for _, m := range []prosel.Marker{prosel.MarkerNone, prosel.MarkerEntry, prosel.MarkerAnomaly, prosel.MarkerUnknown} {
		l.marker(m)
	}
	assert.Equal(t, ".!?", buf.String())

	buf.Reset()
	l = newLister(&buf, true, nil)
	l.marker(prosel.MarkerEntry)
	l.marker(prosel.MarkerAnomaly)
	assert.Equal(t, "!", buf.String())
}

func TestListerSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newLister(&buf, false, nil).summary(prosel.Stats{Volumes: 2, Files: 1200, Bytes: 2048})
	out := buf.String()
	assert.Contains(t, out, "Disc images processed: 2")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "2,048 (2.0 KiB)")
	assert.NotContains(t, out, "anomalies")
}
