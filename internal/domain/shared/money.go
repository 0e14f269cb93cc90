package shared

import (
	"errors"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// MONEY VALUE OBJECT
// Amounts are stored in minor units (cents) to avoid floating point drift.
// Cross-store prices (enrollment price, payment amount, cached course price)
// all share this type so the stores never disagree on representation.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultCurrency is used when no currency is specified.
const DefaultCurrency = "USD"

var (
	// ErrInvalidAmount - money amount must be non-negative.
	ErrInvalidAmount = errors.New("invalid amount: must be non-negative")

	// ErrCurrencyMismatch - operations on money require matching currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Money represents a monetary amount in minor units.
type Money struct {
	// Cents is the amount in minor units (e.g. 4999 = $49.99).
	Cents int64 `json:"cents"`

	// Currency is the ISO 4217 currency code.
	Currency string `json:"currency"`
}

// NewMoney creates a Money value, validating the amount.
func NewMoney(cents int64, currency string) (Money, error) {
	if cents < 0 {
		return Money{}, ErrInvalidAmount
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Cents: cents, Currency: currency}, nil
}

// MustMoney creates a Money value and panics on invalid input.
// Intended for constants and tests.
func MustMoney(cents int64, currency string) Money {
	m, err := NewMoney(cents, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// IsZero returns true for a zero amount.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// IsValid returns true if the amount is non-negative and a currency is set.
func (m Money) IsValid() bool {
	return m.Cents >= 0 && m.Currency != ""
}

// Equals compares two money values.
func (m Money) Equals(other Money) bool {
	return m.Cents == other.Cents && m.Currency == other.Currency
}

// Add returns the sum of two money values with the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Cents: m.Cents + other.Cents, Currency: m.Currency}, nil
}

// String returns a human-readable representation, e.g. "49.99 USD".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.Cents/100, m.Cents%100, m.Currency)
}
