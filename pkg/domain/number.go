package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxExponent bounds the decimal exponent accepted from answers and rule values.
// Comparing decimals rescales both sides to a common exponent, so the cost of a
// comparison grows with the exponent rather than with the length of the input.
const MaxExponent = 400

// ErrNumberOutOfRange is returned for numbers whose exponent exceeds MaxExponent.
var ErrNumberOutOfRange = errors.New("number out of range")

// ParseNumber parses s (surrounding space ignored) as a decimal.
// Numbers written with an exponent beyond ±MaxExponent are rejected.
func ParseNumber(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, err
	}
	if exp := d.Exponent(); exp > MaxExponent || exp < -MaxExponent {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrNumberOutOfRange, s)
	}
	return d, nil
}
