package format

import (
	"math"

	"github.com/shopspring/decimal"
)

// Missing is printed in place of absent or NaN values.
const Missing = "-"

// Number renders *v with exactly digits fractional places, or fallback when
// v is nil or not a finite number.
//
// Rounding is half away from zero, applied to the shortest decimal form of
// the float: 1.005 rounds to "1.01" at two places, even though its binary
// value sits just below the midpoint.
//
// Zero never carries a sign: a negative value that rounds to zero, such as
// -0.00001 at four places, prints "0.0000".
func Number(v *float64, digits int, fallback string) string {
	if v == nil {
		return fallback
	}
	return FloatOr(*v, digits, fallback)
}

// Float is Number for a plain value, using Missing as the fallback.
func Float(v float64, digits int) string {
	return FloatOr(v, digits, Missing)
}

// FloatOr renders v with exactly digits fractional places, or fallback for
// NaN and infinities. Negative digits are treated as zero.
func FloatOr(v float64, digits int, fallback string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	if digits < 0 {
		digits = 0
	}
	return decimal.NewFromFloat(v).StringFixed(int32(digits))
}

// Fixed renders v with DefaultDigits places. P/L figures use it.
func Fixed(v float64) string {
	return Float(v, DefaultDigits)
}

// Plain renders v in its shortest exact decimal form without an exponent,
// e.g. 0.001 or -12.5.
func Plain(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return decimal.NewFromFloat(v).String()
}
