// Package engine describes the trading engine the supervisor drives.
//
// The engine itself (signals, orders, position tracking) lives outside this
// module; the supervisor only needs the lifecycle pair, the update
// subscription and the snapshot accessor defined here.
package engine

import (
	"context"
	"time"

	"github.com/rustyeddy/trendrunner/exchange"
)

// TradeLogEntry is one immutable record in the engine's trade log.
type TradeLogEntry struct {
	Time   time.Time
	Type   string
	Detail string
}

// Position is the engine's current holding in its symbol.
type Position struct {
	PositionAmt float64
	EntryPrice  float64
}

// Snapshot is a read-only, point-in-time view of engine state.
//
// TradeLog is the engine's full log, shared by reference. The engine only
// ever appends to it, so the elements within len(TradeLog) never change
// after the snapshot is published.
type Snapshot struct {
	Ready       bool
	LastPrice   float64
	MAValue     *float64 // nil until the moving average has warmed up
	Trend       Trend
	Position    Position
	PnL         float64
	TotalProfit float64
	TotalTrades int
	TradeLog    []TradeLogEntry
}

// UpdateFunc receives a snapshot each time the engine publishes an update.
// It is called from the engine's goroutine and must not block for long.
type UpdateFunc func(Snapshot)

type Engine interface {
	// Start begins trading. It returns once the engine is running.
	Start(ctx context.Context) error

	// Stop halts the engine. Calling it more than once is harmless.
	Stop()

	// OnUpdate subscribes fn to "update" notifications.
	OnUpdate(fn UpdateFunc)

	// Snapshot returns the current state synchronously.
	Snapshot() Snapshot
}

// Factory builds an engine bound to an exchange adapter.
type Factory func(ad *exchange.Adapter) (Engine, error)
