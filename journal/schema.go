// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS entries (
	entry_id TEXT PRIMARY KEY,
	session TEXT NOT NULL,
	time DATETIME NOT NULL,
	type TEXT NOT NULL,
	detail TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS states (
	session TEXT NOT NULL,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	price REAL NOT NULL,
	ma REAL,
	trend TEXT NOT NULL,
	position_amt REAL NOT NULL,
	entry_price REAL NOT NULL,
	pnl REAL NOT NULL,
	total_profit REAL NOT NULL,
	trades INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notices (
	session TEXT NOT NULL,
	time DATETIME NOT NULL,
	message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_time ON entries(time);
CREATE INDEX IF NOT EXISTS idx_states_time ON states(time);
`
