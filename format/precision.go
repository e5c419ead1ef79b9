// Package format renders prices and P/L values for the audit log.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultDigits is the precision used when a tick size is unusable.
	DefaultDigits = 4

	// MaxDigits is the highest precision InferDigits will report.
	MaxDigits = 8
)

// Ticks outside [minPlainTick, maxPlainTick) print in exponential
// notation on the exchange side, so their digit count cannot be read off
// the string form.
const (
	minPlainTick = 1e-6
	maxPlainTick = 1e21
)

// InferDigits returns how many decimal places a price quoted in steps of
// tick should be displayed with, falling back to DefaultDigits.
//
//	0.0001 -> 4, 0.1 -> 1, 1 -> 0, 0.00000001 -> 8
func InferDigits(tick float64) int {
	return InferDigitsOr(tick, DefaultDigits)
}

// InferDigitsOr is InferDigits with an explicit fallback, returned when tick
// is NaN, infinite or not positive.
//
// The tick is taken in its shortest decimal form, so float noise such as
// 0.1 being stored as 0.1000000000000000055 never leaks into the count,
// and trailing zeros are dropped: a tick of 0.10 resolves one digit, not
// two. The result is clamped to [0, MaxDigits].
func InferDigitsOr(tick float64, fallback int) int {
	if math.IsNaN(tick) || math.IsInf(tick, 0) || tick <= 0 {
		return fallback
	}
	if tick < minPlainTick || tick >= maxPlainTick {
		return MaxDigits
	}

	s := decimal.NewFromFloat(tick).String()
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	frac := strings.TrimRight(s[dot+1:], "0")
	return min(len(frac), MaxDigits)
}
