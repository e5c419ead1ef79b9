// journal/csv.go
package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rustyeddy/trendrunner/engine"
)

var (
	entryHeader = []string{"session", "time", "type", "detail"}
	stateHeader = []string{"session", "time", "symbol", "price", "ma", "trend", "position_amt", "entry_price", "pnl", "total_profit", "trades"}
)

// CSV writes entries and STATE summaries to two spreadsheet-friendly
// files. Notices go to the entries file with type NOTICE.
type CSV struct {
	session string
	entries *csv.Writer
	states  *csv.Writer
	ef, sf  *os.File
}

// NewCSV opens both files for appending, writing a header row only when a
// file is new.
func NewCSV(entriesPath, statesPath, session string) (*CSV, error) {
	ef, ew, err := openCSV(entriesPath, entryHeader)
	if err != nil {
		return nil, err
	}
	sf, sw, err := openCSV(statesPath, stateHeader)
	if err != nil {
		_ = ef.Close()
		return nil, err
	}
	return &CSV{session: session, entries: ew, states: sw, ef: ef, sf: sf}, nil
}

func openCSV(path string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			_ = f.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, nil, fmt.Errorf("write header %s: %w", path, err)
		}
	}
	return f, w, nil
}

func (j *CSV) RecordEntry(e engine.TradeLogEntry) error {
	return j.writeRow(j.entries, []string{
		j.session,
		e.Time.UTC().Format(TimeLayout),
		e.Type,
		e.Detail,
	})
}

func (j *CSV) RecordState(s State) error {
	ma := ""
	if s.MA != nil {
		ma = f(*s.MA)
	}
	return j.writeRow(j.states, []string{
		j.session,
		s.Time.UTC().Format(TimeLayout),
		s.Symbol,
		f(s.Price),
		ma,
		string(s.Trend),
		f(s.PositionAmt),
		f(s.EntryPrice),
		f(s.PnL),
		f(s.TotalProfit),
		strconv.Itoa(s.Trades),
	})
}

func (j *CSV) RecordNotice(n Notice) error {
	return j.writeRow(j.entries, []string{
		j.session,
		n.Time.UTC().Format(TimeLayout),
		"NOTICE",
		n.Message,
	})
}

func (j *CSV) writeRow(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSV) Close() error {
	j.entries.Flush()
	if err := j.entries.Error(); err != nil {
		return err
	}
	j.states.Flush()
	if err := j.states.Error(); err != nil {
		return err
	}

	if err := j.ef.Close(); err != nil {
		return err
	}
	return j.sf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
