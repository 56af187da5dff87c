package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidAmount is returned when a Money would be constructed from a
// negative value.
var ErrInvalidAmount = errors.New("money: amount must not be negative")

// minorUnitDigits is the number of decimal places kept after rounding
// operations. All supported currencies use two minor-unit digits.
const minorUnitDigits = 2

// Money is a non-negative fixed-point currency amount. The zero value is
// zero money and is ready to use.
type Money struct {
	amount decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// New wraps a decimal into a Money. Negative values are rejected.
func New(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s", ErrInvalidAmount, d)
	}
	return Money{amount: d}, nil
}

// Parse builds a Money from its decimal string representation, e.g. "130.00".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return New(d)
}

// MustParse is Parse that panics on error. Intended for constants and tests.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromFloat converts a float into a Money. Negative values are rejected.
func FromFloat(f float64) (Money, error) {
	return New(decimal.NewFromFloat(f))
}

// Add returns the exact sum of both amounts.
func (m Money) Add(o Money) Money {
	return Money{amount: m.amount.Add(o.amount)}
}

// Mul returns the amount scaled by a non-negative integer quantity.
func (m Money) Mul(quantity int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity)))}
}

// ApplyDiscount returns m × (1 - fraction) rounded half-to-even at the
// currency's minor unit. The fraction must lie in [0, 1).
func (m Money) ApplyDiscount(fraction decimal.Decimal) Money {
	factor := decimal.NewFromInt(1).Sub(fraction)
	return Money{amount: m.amount.Mul(factor).RoundBank(minorUnitDigits)}
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Equal reports whether both amounts are numerically equal.
func (m Money) Equal(o Money) bool {
	return m.amount.Equal(o.amount)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// String renders the amount with two decimal places, e.g. "123.50".
func (m Money) String() string {
	return m.amount.StringFixed(minorUnitDigits)
}

// Format renders the amount as a currency string for the given locale,
// e.g. "R$ 123,50" for pt-BR.
func (m Money) Format(tag language.Tag) string {
	unit, _ := currency.FromTag(tag)
	f, _ := m.amount.Float64()
	return message.NewPrinter(tag).Sprintf("%v", currency.Symbol(unit.Amount(f)))
}

// MarshalJSON encodes the amount as a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.amount.String() + `"`), nil
}

// UnmarshalJSON decodes a decimal string or bare number, rejecting negatives.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("money: unmarshal: %w", err)
	}
	parsed, err := New(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
