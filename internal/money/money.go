// Package money centralizes monetary arithmetic for the ledger.
//
// All amounts are exact base-10 decimals (github.com/shopspring/decimal);
// binary floats never carry a monetary value. Persisted amounts are rounded
// to two fractional digits with round-half-away-from-zero. The Epsilon
// tolerance defined here is the single settled/zero threshold used by the
// planner, the services, and validation — callers must not duplicate the
// literal.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance below which a balance is treated as settled.
var Epsilon = decimal.New(1, -2) // 0.01

// Zero is the zero amount.
var Zero = decimal.Zero

// Parse converts a decimal string ("12.50") into an exact amount.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// MustParse is Parse for literals in tests and fixtures; it panics on error.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round2 rounds to two fractional digits, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders an amount with exactly two fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Settled reports whether an amount is within Epsilon of zero.
func Settled(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(Epsilon)
}

// Sum adds a list of amounts.
func Sum(ds ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}

// Min returns the smaller of two amounts.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
