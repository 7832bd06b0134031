package types

import (
	"bytes"

	"github.com/shopspring/decimal"
)

// maxAmountExponent bounds the decimal exponent of a parsed amount, so that rendering a
// value such as 1e100000 cannot expand into an arbitrarily long digit string.
const maxAmountExponent = 64

// Amount is a monetary value that round-trips through JSON as a bare number without
// passing through float64.
type Amount struct {
	decimal.Decimal
}

// NewAmount parses a decimal string such as "-12.50"
func NewAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Decimal: d}, nil
}

// MustAmount is NewAmount for literals known to be valid
func MustAmount(s string) Amount {
	a, err := NewAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '"' || bytes.Equal(trimmed, []byte("null")) {
		return &ValidationError{Reason: "expected number, got " + string(trimmed)}
	}
	d, err := decimal.NewFromString(string(trimmed))
	if err != nil {
		return &ValidationError{Reason: "expected number, got " + string(trimmed)}
	}
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return &ValidationError{Reason: "number out of range: " + string(trimmed)}
	}
	a.Decimal = d
	return nil
}
