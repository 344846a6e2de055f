// Package format renders prices and rates for table and chart output.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Float formats v with at most places decimals, trailing zeros trimmed.
func Float(v float64, places int) string {
	d := decimal.NewFromFloat(v).Round(int32(places))
	return d.String()
}

// Price formats v with thousands separators and a fixed number of
// decimals, e.g. 43812345.0 -> "43,812,345" for places == 0.
func Price(v float64, places int) string {
	s := decimal.NewFromFloat(v).StringFixed(int32(places))
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	if hasFrac {
		sb.WriteByte('.')
		sb.WriteString(fracPart)
	}
	return sb.String()
}

// Percent formats a fractional rate as a signed percentage,
// e.g. 0.0123 -> "+1.23%".
func Percent(rate float64) string {
	d := decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(100)).Round(2)
	s := d.StringFixed(2) + "%"
	if d.Sign() >= 0 {
		return "+" + s
	}
	return s
}
