// Package money holds the rounding and display rules for monetary amounts.
//
// All amounts are shopspring decimals. Rounding is half away from zero to two
// places everywhere; decimal.Round already behaves that way.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const Places = 2

// quotientPrecision is the scale kept for intermediate divisions (daily wage).
const quotientPrecision = 16

// Round rounds to two places, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Div divides keeping enough precision for a later Round.
func Div(d decimal.Decimal, by int64) decimal.Decimal {
	return d.DivRound(decimal.NewFromInt(by), quotientPrecision)
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Sum adds amounts without rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Format renders d with thousands separators and two decimals: 12,345.60
func Format(d decimal.Decimal) string {
	s := Round(d).StringFixed(Places)

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Float converts for consumers that only accept float64 (spreadsheet cells).
func Float(d decimal.Decimal) float64 {
	f, _ := Round(d).Float64()
	return f
}
