package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meigma/prosel/internal/entrytype"
)

func TestLedgerContinuation(t *testing.T) {
	t.Parallel()

	l := New()
	_, ok := l.Lookup("A")
	assert.False(t, ok)
	assert.Equal(t, int64(100), l.Remaining("A", entrytype.ForkData, 100))

	rec := l.Apply("A", entrytype.ForkData, 60, false)
	assert.Equal(t, int64(60), rec.Data)
	assert.False(t, rec.DataDone)
	_, ok = l.Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, int64(40), l.Remaining("A", entrytype.ForkData, 100))

	rec = l.Apply("A", entrytype.ForkData, 40, true)
	assert.Equal(t, int64(100), rec.Data)
	assert.True(t, rec.DataDone)
	assert.Equal(t, 2, rec.Records)
	assert.Zero(t, l.Remaining("A", entrytype.ForkData, 100))
}

func TestLedgerForksAreIndependent(t *testing.T) {
	t.Parallel()

	l := New()
	l.Apply("APP", entrytype.ForkData, 10, true)
	assert.Equal(t, int64(7), l.Remaining("APP", entrytype.ForkResource, 7))

	l.Apply("APP", entrytype.ForkResource, 7, true)
	rec, ok := l.Lookup("APP")
	assert.True(t, ok)
	assert.Equal(t, int64(10), rec.Written(entrytype.ForkData))
	assert.Equal(t, int64(7), rec.Written(entrytype.ForkResource))
}

func TestLedgerRemainingNeverNegative(t *testing.T) {
	t.Parallel()

	l := New()
	l.Apply("A", entrytype.ForkData, 10, false)
	assert.Zero(t, l.Remaining("A", entrytype.ForkData, 4))
}

func TestLedgerLen(t *testing.T) {
	t.Parallel()

	l := New()
	l.Apply("A", entrytype.ForkData, 1, true)
	l.Apply("A", entrytype.ForkResource, 1, true)
	l.Apply("B", entrytype.ForkData, 1, true)
	assert.Equal(t, 2, l.Len())
}
