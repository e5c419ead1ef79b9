// Package journal persists the supervisor's audit trail: engine trade-log
// entries, periodic STATE summaries and lifecycle notices.
package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/trendrunner/engine"
	"github.com/rustyeddy/trendrunner/format"
)

// TimeLayout is the ISO-8601 form every line is stamped with (UTC,
// millisecond precision).
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// State is one condensed summary of an engine snapshot.
type State struct {
	Time        time.Time
	Symbol      string
	Digits      int // display precision for prices
	MAPeriod    int
	Price       float64
	MA          *float64
	Trend       engine.Trend
	PositionAmt float64
	EntryPrice  float64
	PnL         float64
	TotalProfit float64
	Trades      int
}

// Notice is a lifecycle message such as startup or shutdown.
type Notice struct {
	Time    time.Time
	Message string
}

type Journal interface {
	RecordEntry(engine.TradeLogEntry) error
	RecordState(State) error
	RecordNotice(Notice) error
	Close() error
}

// Stamp renders t as the bracketed timestamp that prefixes each line.
func Stamp(t time.Time) string {
	return "[" + t.UTC().Format(TimeLayout) + "]"
}

var oneLine = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// EntryLine renders e as "[<time>] [<type>] <detail>". Embedded newlines
// are flattened so one entry is always one physical line.
func EntryLine(e engine.TradeLogEntry) string {
	return fmt.Sprintf("%s [%s] %s", Stamp(e.Time), oneLine.Replace(e.Type), oneLine.Replace(e.Detail))
}

// Line renders the STATE summary without its timestamp prefix.
func (s State) Line() string {
	maKey := "ma"
	if s.MAPeriod > 0 {
		maKey = fmt.Sprintf("sma%d", s.MAPeriod)
	}
	return fmt.Sprintf("STATE price=%s %s=%s trend=%s posAmt=%s entry=%s pnl=%s totalProfit=%s trades=%d",
		format.Float(s.Price, s.Digits),
		maKey, format.Number(s.MA, s.Digits, format.Missing),
		s.Trend.Label(),
		format.Plain(s.PositionAmt),
		format.Float(s.EntryPrice, s.Digits),
		format.Fixed(s.PnL),
		format.Fixed(s.TotalProfit),
		s.Trades,
	)
}

// StateLine renders s as a full log line.
func StateLine(s State) string {
	return Stamp(s.Time) + " " + s.Line()
}

// NoticeLine renders n as a full log line.
func NoticeLine(n Notice) string {
	return Stamp(n.Time) + " " + oneLine.Replace(n.Message)
}
