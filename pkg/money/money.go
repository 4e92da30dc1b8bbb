// Package money holds the canonical integer minor-unit amount used across
// pricing, orders and payments. Decimal conversion happens only at the edges.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyUGX Currency = "UGX"
)

var minorExponents = map[Currency]int32{
	CurrencyUSD: 2,
	CurrencyUGX: 0,
}

// ParseCurrency normalizes a configured currency code.
func ParseCurrency(value string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := minorExponents[c]; !ok {
		return "", fmt.Errorf("unsupported currency %q", value)
	}
	return c, nil
}

// Exponent returns the number of decimal places of one minor unit.
func (c Currency) Exponent() int32 {
	if exp, ok := minorExponents[c]; ok {
		return exp
	}
	return 2
}

// Money is an amount in minor units (cents for USD, shillings for UGX).
type Money int64

// Zero is the additive identity.
const Zero Money = 0

func (m Money) Add(other Money) Money {
	return m + other
}

// Times multiplies by an integer quantity.
func (m Money) Times(quantity int) Money {
	return m * Money(quantity)
}

func (m Money) Minor() int64 {
	return int64(m)
}

// Decimal converts the amount to major units for display.
func (m Money) Decimal(c Currency) decimal.Decimal {
	return decimal.New(int64(m), -c.Exponent())
}

// Format renders the amount with the currency's fixed number of decimals.
func (m Money) Format(c Currency) string {
	return m.Decimal(c).StringFixed(c.Exponent())
}

// FromDecimal converts a major-unit decimal into minor units, rejecting
// values that carry more precision than the currency allows.
func FromDecimal(d decimal.Decimal, c Currency) (Money, error) {
	scaled := d.Shift(c.Exponent())
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d.String(), c.Exponent())
	}
	return Money(scaled.IntPart()), nil
}

// Parse reads a major-unit string such as "12.50".
func Parse(value string, c Currency) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	return FromDecimal(d, c)
}
