package engine

import (
	"fmt"
	"strings"
)

// Trend is the engine's directional bias.
type Trend string

const (
	TrendLong  Trend = "long"
	TrendShort Trend = "short"
	TrendNone  Trend = "none"
)

// ParseTrend accepts the canonical names plus the engine's own labels.
// An empty string is TrendNone.
func ParseTrend(s string) (Trend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "做多":
		return TrendLong, nil
	case "short", "做空":
		return TrendShort, nil
	case "", "none", "无信号":
		return TrendNone, nil
	default:
		return TrendNone, fmt.Errorf("unknown trend %q", s)
	}
}

// Label is the display form used in STATE lines.
func (t Trend) Label() string {
	switch t {
	case TrendLong:
		return "LONG"
	case TrendShort:
		return "SHORT"
	default:
		return "NONE"
	}
}
