package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is a display preference only. Amounts are never converted.
type Currency string

const (
	USD Currency = "USD"
	CAD Currency = "CAD"
)

func ParseCurrency(s string) (Currency, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(USD):
		return USD, true
	case string(CAD):
		return CAD, true
	}
	return "", false
}

func (c Currency) Symbol() string {
	if c == CAD {
		return "CA$"
	}
	return "$"
}

// ParseAmount parses a user-supplied amount. Non-numeric input yields zero,
// negative input is clamped to zero. Form fields must never produce an error.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return Clamp(d)
}

// Clamp returns d, or zero when d is negative.
func Clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Format renders an amount with two decimal places and the currency symbol.
// Rounding happens here and nowhere else.
func Format(d decimal.Decimal, c Currency) string {
	return c.Symbol() + d.StringFixed(2)
}
