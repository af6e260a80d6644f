// Package money provides fixed-point currency arithmetic built on
// shopspring/decimal. All monetary values in the engine flow through this
// package so that rounding happens exactly once per derived figure.
package money

import "github.com/shopspring/decimal"

// Zero is the zero amount.
var Zero = decimal.Zero

var hundred = decimal.NewFromInt(100)

// Round2 rounds an amount to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundUnit rounds an amount to the nearest whole currency unit, half away
// from zero.
func RoundUnit(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// Percent returns base × pct / 100 without rounding. Callers round the result
// once via Round2.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// FromFloat converts a numeric input field to a decimal amount.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// IsNegative reports whether the amount is below zero.
func IsNegative(d decimal.Decimal) bool {
	return d.Sign() < 0
}

// InPercentRange reports whether the value is a valid percentage in [0,100].
func InPercentRange(d decimal.Decimal) bool {
	return d.Sign() >= 0 && d.LessThanOrEqual(hundred)
}
