package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountRequired       = errors.New("amount is required")
	ErrInvalidAmount        = errors.New("enter a valid number")
	ErrTooManyDecimalPlaces = errors.New("ensure that there are no more than 2 decimal places")
	ErrTooManyDigits        = errors.New("amount is too large")
)

// ParseAmount parses a fixed-point money string such as "12.50".
//
// digits and places mirror a NUMERIC(digits, places) column: at most places
// fractional digits and digits-places integer digits are accepted. Exponent
// notation, signs other than a leading minus, and thousands separators are
// rejected. The returned value is never rounded.
func ParseAmount(s string, digits, places int) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrAmountRequired
	}

	body := strings.TrimPrefix(s, "-")
	if body == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range body {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}

	intPart, fracPart, _ := strings.Cut(body, ".")
	if len(fracPart) > places {
		return decimal.Zero, ErrTooManyDecimalPlaces
	}
	intPart = strings.TrimLeft(intPart, "0")
	if len(intPart) > digits-places {
		return decimal.Zero, ErrTooManyDigits
	}

	return d, nil
}

// ParseOptionalAmount is ParseAmount for nullable columns: a blank string
// yields nil.
func ParseOptionalAmount(s string, digits, places int) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := ParseAmount(s, digits, places)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FormatAmount renders money with exactly two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}

// FormatOptionalAmount renders a nullable money value; nil renders empty.
func FormatOptionalAmount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return FormatAmount(*d)
}
