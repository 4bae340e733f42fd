// Package types provides common type aliases and utilities.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits kept for every stored or displayed amount.
const MoneyPlaces int32 = 2

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MoneyFromCents creates a Money value from an amount in minor units.
func MoneyFromCents(cents int64) Money {
	return decimal.New(cents, -MoneyPlaces)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds to two decimal places, half away from zero (2.345 -> 2.35, -2.345 -> -2.35).
func Round2(m Money) Money {
	return m.Round(MoneyPlaces)
}

// IsWholeCents reports whether m has no digits below the minor unit.
// 1.50 and 1.500 are whole cents; 0.005 is not.
func IsWholeCents(m Money) bool {
	return m.Equal(m.Truncate(MoneyPlaces))
}

// LineTotal returns quantity × unitPrice rounded to two places.
func LineTotal(quantity int, unitPrice Money) Money {
	return Round2(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// Sum adds amounts without intermediate rounding.
func Sum(amounts ...Money) Money {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Currency describes how amounts are displayed in one deployment.
type Currency struct {
	// Symbol is prefixed to every amount, e.g. "GH¢" or "GH₵".
	Symbol string
}

// DefaultCurrency is the deployment default (Ghanaian cedi, cp1252-safe sign).
func DefaultCurrency() Currency {
	return Currency{Symbol: "GH¢"}
}

// Format renders m with exactly two decimals: GH¢12.50, -GH¢3.00.
func (c Currency) Format(m Money) string {
	r := Round2(m)
	if r.IsNegative() {
		return fmt.Sprintf("-%s%s", c.Symbol, r.Neg().StringFixed(MoneyPlaces))
	}
	return c.Symbol + r.StringFixed(MoneyPlaces)
}
