package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits every monetary value carries.
const AmountScale int32 = 8

// AmountMaxIntegerDigits bounds the integer part so amounts fit NUMERIC(28,8).
const AmountMaxIntegerDigits = 20

// AmountUnit is the smallest representable amount (1e-8).
var AmountUnit = decimal.New(1, -AmountScale)

// amountLimit is the smallest amount with too many integer digits.
var amountLimit = decimal.New(1, AmountMaxIntegerDigits)

// ParseAmount parses a non-negative plain decimal string (no exponent) with at most
// AmountScale fractional digits. An empty string is treated as zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, fmt.Errorf("invalid amount %q: exponent notation is not accepted", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, fmt.Errorf("amount %q %w", s, err)
	}
	return d, nil
}

// CheckAmount reports why d cannot be stored as a ledger amount, or nil.
func CheckAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	if !d.Equal(d.Truncate(AmountScale)) {
		return fmt.Errorf("has more than %d fractional digits", AmountScale)
	}
	if d.GreaterThanOrEqual(amountLimit) {
		return fmt.Errorf("has more than %d integer digits", AmountMaxIntegerDigits)
	}
	return nil
}

// FormatAmount renders an amount as a fixed-point string with AmountScale fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountScale)
}
