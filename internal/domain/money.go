package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// MoneyScale is the number of fractional digits kept for every amount.
	MoneyScale = 2
	// MaxMoney is the largest absolute value a balance or amount may hold.
	MaxMoney = "999999999999999.99"
)

const (
	maxIntegerDigits = 15
	// maxLiteralScale allows trailing zeros such as "1.000" but rejects absurd exponents.
	maxLiteralScale = 32
)

var maxMoney = decimal.RequireFromString(MaxMoney)

// Money is an exact decimal amount. The zero value is 0.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// NewMoney validates d and returns it as Money.
// Values with more than MoneyScale fractional digits are rejected instead of rounded.
func NewMoney(d decimal.Decimal) (Money, error) {
	if d.IsZero() {
		return Zero, nil
	}

	// Bound the exponent first: comparing or truncating rescales the coefficient,
	// which costs time proportional to the exponent.
	if exp := int(d.Exponent()); exp > 0 && d.NumDigits()+exp > maxIntegerDigits {
		return Zero, ErrAmountOverflow
	} else if exp < -maxLiteralScale {
		return Zero, fmt.Errorf("%w: at most %d fractional digits allowed", ErrInvalidAmount, MoneyScale)
	}

	if !d.Equal(d.Truncate(MoneyScale)) {
		return Zero, fmt.Errorf("%w: at most %d fractional digits allowed", ErrInvalidAmount, MoneyScale)
	}

	if d.Abs().GreaterThan(maxMoney) {
		return Zero, ErrAmountOverflow
	}

	return Money{d: d}, nil
}

// ParseMoney parses a decimal literal such as "100" or "12.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, s)
	}

	return NewMoney(d)
}

// MustMoney is like ParseMoney but panics on error. Intended for constants and tests.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}

	return m
}

// MoneyFromInt returns a whole amount.
func MoneyFromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

// NewAmount validates a transaction amount: strictly positive and representable.
func NewAmount(d decimal.Decimal) (Money, error) {
	if !d.IsPositive() {
		return Zero, ErrInvalidAmount
	}

	return NewMoney(d)
}

// Add returns m + o, or ErrAmountOverflow.
func (m Money) Add(o Money) (Money, error) {
	return NewMoney(m.d.Add(o.d))
}

// Sub returns m - o, or ErrAmountOverflow.
func (m Money) Sub(o Money) (Money, error) {
	return NewMoney(m.d.Sub(o.d))
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{d: m.d.Neg()}
}

// Cmp returns -1, 0 or +1 as m is less than, equal to or greater than o.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

// Equal reports whether m == o regardless of scale.
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

// LessThan reports whether m < o.
func (m Money) LessThan(o Money) bool { return m.d.LessThan(o.d) }

// GreaterThan reports whether m > o.
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }

// IsZero reports whether m == 0.
func (m Money) IsZero() bool { return m.d.IsZero() }

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool { return m.d.IsPositive() }

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// String renders the amount with exactly MoneyScale fractional digits.
func (m Money) String() string {
	return m.d.StringFixed(MoneyScale)
}

// MarshalJSON encodes the amount as a JSON string to keep it exact for clients.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both JSON numbers and strings.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	v, err := NewMoney(d)
	if err != nil {
		return err
	}

	*m = v

	return nil
}
