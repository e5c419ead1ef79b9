package journal

import (
	"database/sql"
	"time"

	"github.com/rustyeddy/trendrunner/engine"
)

// ListEntriesBetween returns trade-log entries with time in [start, end),
// in the order they were written.
func (j *SQLite) ListEntriesBetween(start, end time.Time) ([]engine.TradeLogEntry, error) {
	rows, err := j.db.Query(`
		SELECT time, type, detail
		FROM entries
		WHERE time >= ? AND time < ?
		ORDER BY rowid ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.TradeLogEntry
	for rows.Next() {
		var e engine.TradeLogEntry
		if err := rows.Scan(&e.Time, &e.Type, &e.Detail); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListStatesBetween returns STATE summaries with time in [start, end), in
// the order they were written.
// Digits and MAPeriod are display settings and are not stored; callers set
// them before rendering.
func (j *SQLite) ListStatesBetween(start, end time.Time) ([]State, error) {
	rows, err := j.db.Query(`
		SELECT time, symbol, price, ma, trend, position_amt, entry_price, pnl, total_profit, trades
		FROM states
		WHERE time >= ? AND time < ?
		ORDER BY rowid ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []State
	for rows.Next() {
		var (
			s     State
			ma    sql.NullFloat64
			trend string
		)
		if err := rows.Scan(
			&s.Time,
			&s.Symbol,
			&s.Price,
			&ma,
			&trend,
			&s.PositionAmt,
			&s.EntryPrice,
			&s.PnL,
			&s.TotalProfit,
			&s.Trades,
		); err != nil {
			return nil, err
		}
		if ma.Valid {
			v := ma.Float64
			s.MA = &v
		}
		s.Trend = engine.Trend(trend)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountSessions returns how many distinct runs wrote any row: an entry, a
// STATE summary or a notice.
func (j *SQLite) CountSessions() (int, error) {
	var n int
	err := j.db.QueryRow(`
		SELECT COUNT(*) FROM (
			SELECT session FROM entries
			UNION SELECT session FROM states
			UNION SELECT session FROM notices
		)`).Scan(&n)
	return n, err
}
