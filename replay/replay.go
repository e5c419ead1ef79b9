// Package replay provides a scripted engine.Engine that plays engine
// snapshots back from a CSV file. It stands in for the live trend engine
// in dry runs and tests.
package replay

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/trendrunner/engine"
	"github.com/rustyeddy/trendrunner/exchange"
)

// Row is one scripted engine state. Type and Detail are optional; when
// Type is set the row also appends a trade-log entry.
//
// CSV columns:
//
//	time,price,ma,trend,position_amt,entry_price,pnl,total_profit,type,detail
//
// time is RFC 3339. An empty ma means the average is not warm yet; other
// empty numeric columns read as zero.
type Row struct {
	Time        time.Time
	Price       float64
	MA          *float64
	Trend       engine.Trend
	PositionAmt float64
	EntryPrice  float64
	PnL         float64
	TotalProfit float64
	Type        string
	Detail      string
}

const minColumns = 8

// Load reads a replay script from path.
func Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Parse reads a replay script. A leading header row is detected and
// skipped.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []Row
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "time") {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, row)
	}
}

func parseRow(rec []string) (Row, error) {
	if len(rec) < minColumns {
		return Row{}, fmt.Errorf("need at least %d columns, got %d", minColumns, len(rec))
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}

	var (
		row Row
		err error
	)
	if row.Time, err = time.Parse(time.RFC3339, rec[0]); err != nil {
		return Row{}, fmt.Errorf("bad time %q: %w", rec[0], err)
	}
	if row.Price, err = strconv.ParseFloat(rec[1], 64); err != nil {
		return Row{}, fmt.Errorf("bad price %q: %w", rec[1], err)
	}
	if rec[2] != "" {
		ma, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return Row{}, fmt.Errorf("bad ma %q: %w", rec[2], err)
		}
		row.MA = &ma
	}
	if row.Trend, err = engine.ParseTrend(rec[3]); err != nil {
		return Row{}, err
	}

	nums := []struct {
		name string
		dst  *float64
		s    string
	}{
		{"position_amt", &row.PositionAmt, rec[4]},
		{"entry_price", &row.EntryPrice, rec[5]},
		{"pnl", &row.PnL, rec[6]},
		{"total_profit", &row.TotalProfit, rec[7]},
	}
	for _, n := range nums {
		if n.s == "" {
			continue
		}
		if *n.dst, err = strconv.ParseFloat(n.s, 64); err != nil {
			return Row{}, fmt.Errorf("bad %s %q: %w", n.name, n.s, err)
		}
	}

	if len(rec) > 8 {
		row.Type = rec[8]
	}
	if len(rec) > 9 {
		row.Detail = strings.Join(rec[9:], ",")
	}
	return row, nil
}

var ErrAlreadyStarted = errors.New("replay: engine already started")

// Engine steps through its rows on a ticker, publishing a snapshot after
// each one. Once the script is exhausted it idles until stopped.
type Engine struct {
	symbol   string
	rows     []Row
	interval time.Duration

	mu       sync.Mutex
	next     int
	snap     engine.Snapshot
	log      []engine.TradeLogEntry
	subs     []engine.UpdateFunc
	started  bool
	stopped  bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New returns an engine that replays rows for ad's symbol, one row per
// interval.
func New(ad *exchange.Adapter, rows []Row, interval time.Duration) *Engine {
	return &Engine{
		symbol:   ad.Symbol(),
		rows:     rows,
		interval: interval,
		snap:     engine.Snapshot{Trend: engine.TrendNone},
		stopCh:   make(chan struct{}),
	}
}

// Factory binds rows and interval into an engine.Factory.
func Factory(rows []Row, interval time.Duration) engine.Factory {
	return func(ad *exchange.Adapter) (engine.Engine, error) {
		if len(rows) == 0 {
			return nil, fmt.Errorf("replay: no rows to play")
		}
		return New(ad, rows, interval), nil
	}
}

func (e *Engine) OnUpdate(fn engine.UpdateFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, fn)
}

// Start records a start entry and begins stepping in the background. The
// loop ends on Stop or when ctx is done.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.started = true
	e.appendLocked(engine.TradeLogEntry{
		Time:   time.Now(),
		Type:   "info",
		Detail: fmt.Sprintf("replaying %d rows for %s", len(e.rows), e.symbol),
	})
	e.mu.Unlock()

	if e.interval <= 0 {
		return nil
	}

	go func() {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-e.stopCh:
				return
			case <-ticker.C:
				e.Step()
			}
		}
	}()
	return nil
}

// Stop ends the replay. No update is published after Stop returns other
// than one already in flight.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		e.stopped = true
		e.mu.Unlock()
		close(e.stopCh)
	})
}

// Step applies the next row and publishes the resulting snapshot. It
// reports false once the script is exhausted or the engine is stopped.
func (e *Engine) Step() bool {
	e.mu.Lock()
	if e.stopped || e.next >= len(e.rows) {
		e.mu.Unlock()
		return false
	}
	row := e.rows[e.next]
	e.next++

	e.snap.Ready = true
	e.snap.LastPrice = row.Price
	e.snap.MAValue = row.MA
	e.snap.Trend = row.Trend
	e.snap.Position = engine.Position{PositionAmt: row.PositionAmt, EntryPrice: row.EntryPrice}
	e.snap.PnL = row.PnL
	e.snap.TotalProfit = row.TotalProfit
	if row.Type != "" {
		e.appendLocked(engine.TradeLogEntry{Time: row.Time, Type: row.Type, Detail: row.Detail})
		if strings.EqualFold(row.Type, "close") {
			e.snap.TotalTrades++
		}
	}

	snap := e.snapshotLocked()
	subs := append([]engine.UpdateFunc(nil), e.subs...)
	e.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return true
}

func (e *Engine) Snapshot() engine.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Remaining returns how many rows are left to play.
func (e *Engine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.rows) - e.next
}

func (e *Engine) appendLocked(entry engine.TradeLogEntry) {
	e.log = append(e.log, entry)
}

// snapshotLocked returns the current state with TradeLog capped at its
// length, so callers cannot append into the engine's log.
func (e *Engine) snapshotLocked() engine.Snapshot {
	s := e.snap
	s.TradeLog = e.log[:len(e.log):len(e.log)]
	if s.MAValue != nil {
		v := *s.MAValue
		s.MAValue = &v
	}
	return s
}
