// Package core provides money parsing and handling utilities.
//
// Amounts are shopspring decimals in memory and integer cents at rest.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MaxAmount bounds the magnitude of any single amount. Its cents value, and
// the sum of many such values, stays well inside int64.
var MaxAmount = decimal.New(1, 13)

// checkAmount rejects amounts with digits below the cent or beyond MaxAmount.
func checkAmount(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(2)) || d.Abs().GreaterThan(MaxAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// ParseAmount converts a user supplied amount to a decimal rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, and
// Brazilian grouping (1.234,56) when both appear. Rounding is half-up on the
// third decimal place. Negative values are rejected; zero is allowed.
//
// Examples:
//
//	ParseAmount("12.34")    -> 12.34
//	ParseAmount("1.234,56") -> 1234.56
//	ParseAmount("12.345")   -> 12.35
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := ParseSignedAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseSignedAmount is ParseAmount without the sign check, used by statement imports.
func ParseSignedAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		// Comma is the decimal separator; dots are thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// ToCents converts an amount to integer cents, rounding half away from zero.
// Amounts that passed validation always fit.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromCents converts integer cents back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
