package journal

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/trendrunner/engine"
)

// ErrLogShrunk reports a trade log that got shorter between flushes.
var ErrLogShrunk = errors.New("journal: trade log shrank below flush cursor")

// Flusher appends the unwritten suffix of an engine's trade log to a
// Journal. Its cursor counts entries already written; it lives only as long
// as the process and starts at zero.
//
// A Flusher is not safe for concurrent use. The supervisor's event loop is
// its only caller.
type Flusher struct {
	j      Journal
	cursor int
}

func NewFlusher(j Journal) *Flusher {
	return &Flusher{j: j}
}

// Cursor returns how many entries have been written.
func (f *Flusher) Cursor() int { return f.cursor }

// Flush writes entries[cursor:] in order and returns how many it wrote.
//
// The cursor advances after each successful write, so when the journal
// fails the error is returned at once and the failed entry is the first
// one written by the next Flush. If entries is shorter than the cursor the
// log was not append-only; the cursor is clamped to len(entries), nothing
// is written and ErrLogShrunk is returned.
func (f *Flusher) Flush(entries []engine.TradeLogEntry) (int, error) {
	if len(entries) < f.cursor {
		prev := f.cursor
		f.cursor = len(entries)
		return 0, fmt.Errorf("%w: cursor %d, length %d", ErrLogShrunk, prev, len(entries))
	}

	written := 0
	for _, e := range entries[f.cursor:] {
		if err := f.j.RecordEntry(e); err != nil {
			return written, fmt.Errorf("flush entry %d: %w", f.cursor, err)
		}
		f.cursor++
		written++
	}
	return written, nil
}
