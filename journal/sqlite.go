package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/trendrunner/engine"
	"github.com/rustyeddy/trendrunner/id"
)

// SQLite mirrors the audit trail into a queryable database. Rows carry the
// session ID of the run that wrote them.
type SQLite struct {
	db      *sql.DB
	session string
}

func NewSQLite(path, session string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db, session: session}, nil
}

// RecordEntry fails for an entry whose time has no ULID key, such as an
// unset time. Nothing is written in that case.
func (j *SQLite) RecordEntry(e engine.TradeLogEntry) error {
	key, err := id.NewAt(e.Time)
	if err != nil {
		return fmt.Errorf("entry key: %w", err)
	}
	_, err = j.db.Exec(`
		INSERT INTO entries (entry_id, session, time, type, detail)
		VALUES (?, ?, ?, ?, ?)`,
		key, j.session, e.Time.UTC(), e.Type, e.Detail,
	)
	return err
}

func (j *SQLite) RecordState(s State) error {
	var ma sql.NullFloat64
	if s.MA != nil {
		ma = sql.NullFloat64{Float64: *s.MA, Valid: true}
	}
	_, err := j.db.Exec(`
		INSERT INTO states
		(session, time, symbol, price, ma, trend, position_amt, entry_price, pnl, total_profit, trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.session, s.Time.UTC(), s.Symbol, s.Price, ma, string(s.Trend),
		s.PositionAmt, s.EntryPrice, s.PnL, s.TotalProfit, s.Trades,
	)
	return err
}

func (j *SQLite) RecordNotice(n Notice) error {
	_, err := j.db.Exec(`INSERT INTO notices (session, time, message) VALUES (?, ?, ?)`,
		j.session, n.Time.UTC(), n.Message,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
