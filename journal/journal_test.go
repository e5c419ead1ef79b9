package journal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/trendrunner/engine"
)

// memJournal records rendered lines in memory. A non-nil failEntry makes
// RecordEntry fail while it returns true.
type memJournal struct {
	lines     []string
	failEntry func(engine.TradeLogEntry) bool
	closed    bool
}

var errDiskFull = errors.New("disk full")

func (m *memJournal) RecordEntry(e engine.TradeLogEntry) error {
	if m.failEntry != nil && m.failEntry(e) {
		return errDiskFull
	}
	m.lines = append(m.lines, EntryLine(e))
	return nil
}

func (m *memJournal) RecordState(s State) error {
	m.lines = append(m.lines, StateLine(s))
	return nil
}

func (m *memJournal) RecordNotice(n Notice) error {
	m.lines = append(m.lines, NoticeLine(n))
	return nil
}

func (m *memJournal) Close() error {
	m.closed = true
	return nil
}

var testTime = time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, time.UTC)

func TestStamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[2024-01-02T03:04:05.678Z]", Stamp(testTime))

	// Non-UTC times are normalised.
	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, "[2024-01-02T03:04:05.678Z]", Stamp(testTime.In(est)))
}

func TestEntryLine(t *testing.T) {
	t.Parallel()

	e := engine.TradeLogEntry{Time: testTime, Type: "open", Detail: "buy 0.01 @ 27000"}
	assert.Equal(t, "[2024-01-02T03:04:05.678Z] [open] buy 0.01 @ 27000", EntryLine(e))

	multi := engine.TradeLogEntry{Time: testTime, Type: "error", Detail: "line one\nline two\r\nthree"}
	assert.Equal(t, "[2024-01-02T03:04:05.678Z] [error] line one line two three", EntryLine(multi))
}

func TestStateLine(t *testing.T) {
	t.Parallel()

	ma := 27100.05
	s := State{
		Time:        testTime,
		Symbol:      "BTCUSDT",
		Digits:      1,
		MAPeriod:    30,
		Price:       27123.4,
		MA:          &ma,
		Trend:       engine.TrendLong,
		PositionAmt: 0.002,
		EntryPrice:  27000,
		PnL:         0.24681,
		TotalProfit: -1.5,
		Trades:      3,
	}

	want := "[2024-01-02T03:04:05.678Z] STATE price=27123.4 sma30=27100.1 trend=LONG posAmt=0.002 entry=27000.0 pnl=0.2468 totalProfit=-1.5000 trades=3"
	assert.Equal(t, want, StateLine(s))
}

func TestStateLineWithoutMA(t *testing.T) {
	t.Parallel()

	s := State{Time: testTime, Digits: 2, Price: 1.5}
	assert.Equal(t,
		"STATE price=1.50 ma=- trend=NONE posAmt=0 entry=0.00 pnl=0.0000 totalProfit=0.0000 trades=0",
		s.Line())
}

func TestNoticeLine(t *testing.T) {
	t.Parallel()

	n := Notice{Time: testTime, Message: "received terminated,\nstopping engine"}
	assert.Equal(t, "[2024-01-02T03:04:05.678Z] received terminated, stopping engine", NoticeLine(n))
}
