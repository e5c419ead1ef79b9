package journal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/trendrunner/engine"
	"github.com/rustyeddy/trendrunner/id"
)

func TestTeeWritesPrimaryThenMirrors(t *testing.T) {
	t.Parallel()

	primary, mirror := &memJournal{}, &memJournal{}
	tee := &Tee{Primary: primary, Mirrors: []Journal{mirror}}

	e := engine.TradeLogEntry{Time: testTime, Type: "open", Detail: "x"}
	require.NoError(t, tee.RecordEntry(e))
	require.NoError(t, tee.RecordState(State{Time: testTime}))
	require.NoError(t, tee.RecordNotice(Notice{Time: testTime, Message: "hi"}))

	assert.Len(t, primary.lines, 3)
	assert.Equal(t, primary.lines, mirror.lines)

	require.NoError(t, tee.Close())
	assert.True(t, primary.closed)
	assert.True(t, mirror.closed)
}

func TestTeePrimaryFailureSkipsMirrors(t *testing.T) {
	t.Parallel()

	primary := &memJournal{failEntry: func(engine.TradeLogEntry) bool { return true }}
	mirror := &memJournal{}
	tee := &Tee{Primary: primary, Mirrors: []Journal{mirror}}

	err := tee.RecordEntry(engine.TradeLogEntry{Time: testTime, Type: "open"})
	assert.ErrorIs(t, err, errDiskFull)
	assert.Empty(t, mirror.lines)
}

func TestTeeMirrorFailureIsReportedNotReturned(t *testing.T) {
	t.Parallel()

	primary := &memJournal{}
	broken := &memJournal{failEntry: func(engine.TradeLogEntry) bool { return true }}
	healthy := &memJournal{}

	var reported []error
	tee := &Tee{
		Primary:       primary,
		Mirrors:       []Journal{broken, healthy},
		OnMirrorError: func(err error) { reported = append(reported, err) },
	}

	fl := NewFlusher(tee)
	n, err := fl.Flush([]engine.TradeLogEntry{entryN(0), entryN(1)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Len(t, primary.lines, 2)
	assert.Len(t, healthy.lines, 2)
	require.Len(t, reported, 2)
	assert.True(t, errors.Is(reported[0], errDiskFull))
	assert.Contains(t, reported[0].Error(), "journal mirror")
}

// panicJournal blows up on every write.
type panicJournal struct{ memJournal }

func (p *panicJournal) RecordEntry(engine.TradeLogEntry) error { panic("mirror exploded") }

func TestTeeMirrorPanicIsReportedNotPropagated(t *testing.T) {
	t.Parallel()

	primary, healthy := &memJournal{}, &memJournal{}
	var reported []error
	tee := &Tee{
		Primary:       primary,
		Mirrors:       []Journal{&panicJournal{}, healthy},
		OnMirrorError: func(err error) { reported = append(reported, err) },
	}

	var (
		n   int
		err error
	)
	require.NotPanics(t, func() { n, err = NewFlusher(tee).Flush([]engine.TradeLogEntry{entryN(0)}) })
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, primary.lines, 1)
	assert.Len(t, healthy.lines, 1)
	require.Len(t, reported, 1)
	assert.Contains(t, reported[0].Error(), "mirror exploded")
}

func TestTeeFlushOddEntryTimesThroughEveryMirror(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	daily, err := OpenDaily(dir, testTime)
	require.NoError(t, err)
	db, err := NewSQLite(filepath.Join(dir, "journal.db"), "S1")
	require.NoError(t, err)
	sheet, err := NewCSV(filepath.Join(dir, "entries.csv"), filepath.Join(dir, "states.csv"), "S1")
	require.NoError(t, err)

	var reported []error
	tee := &Tee{
		Primary:       daily,
		Mirrors:       []Journal{db, sheet},
		OnMirrorError: func(err error) { reported = append(reported, err) },
	}
	t.Cleanup(func() { _ = tee.Close() })

	log := []engine.TradeLogEntry{
		{Type: "info", Detail: "engine left time unset"},
		{Time: time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC), Type: "info", Detail: "replayed from 1969"},
		entryN(0),
	}

	fl := NewFlusher(tee)
	var n int
	require.NotPanics(t, func() { n, err = fl.Flush(log) })
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, fl.Cursor())

	// The daily file has every entry.
	data, err := os.ReadFile(daily.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	for i, e := range log {
		assert.Equal(t, EntryLine(e), lines[i])
	}

	// SQLite cannot key the first two and says so; CSV takes all three.
	require.Len(t, reported, 2)
	for _, err := range reported {
		assert.ErrorIs(t, err, id.ErrTimeRange)
		assert.Contains(t, err.Error(), "journal mirror")
	}
	assert.Len(t, readCSV(t, filepath.Join(dir, "entries.csv")), 4)

	got, err := db.ListEntriesBetween(testTime.Add(-time.Hour), testTime.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "event 0", got[0].Detail)
}
