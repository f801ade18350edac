// Package money provides the exact-precision monetary value object shared by
// every aggregate and repository in the system.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidCurrency is returned when a currency code is not a 3-letter code.
var ErrInvalidCurrency = errors.New("currency must be a 3-letter code")

// ErrNegativeAmount is returned when an operation would produce a negative amount.
var ErrNegativeAmount = errors.New("amount cannot be negative")

// ErrCurrencyMismatch is returned when two Money values have different currencies.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is an amount paired with its ISO-4217-shaped currency code.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Zero returns a zero-valued Money in the given currency.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// New builds a Money, validating the currency shape. It does not reject
// negative amounts — callers that must guarantee non-negativity (e.g. account
// balances) check that separately, since some call sites (transfer deltas)
// are legitimately negative.
func New(amount decimal.Decimal, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}

	return Money{Amount: amount, Currency: currency}, nil
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// SameCurrency reports whether both values share a currency.
func (m Money) SameCurrency(other Money) bool {
	return m.Currency == other.Currency
}

// Add returns m + other. Both must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}

	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other. Both must share a currency.
func (m Money) Sub(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}

	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// GreaterThanOrEqual reports whether m >= other, requiring matching currencies.
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	if !m.SameCurrency(other) {
		return false, ErrCurrencyMismatch
	}

	return m.Amount.GreaterThanOrEqual(other.Amount), nil
}

// String renders "123.45 NGN".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}
