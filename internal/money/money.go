package money

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Scale is the number of minor-unit digits carried by every balance.
const Scale = 2

// ErrInvalidAmount is returned when a string is not a base-10 numeral.
var ErrInvalidAmount = errors.New("invalid amount")

var numeral = regexp.MustCompile(`^-?\d*\.?\d+$`)

// Money is an exact decimal quantity. The zero value is 0.
type Money struct {
	d decimal.Decimal
}

// Zero returns 0.00.
func Zero() Money {
	return Money{}
}

// Valid reports whether raw is accepted by Parse.
func Valid(raw string) bool {
	return numeral.MatchString(raw)
}

// Parse reads an optionally signed base-10 numeral such as "100", "100.1",
// ".12745" or "-100". The value is kept at full precision; callers decide
// when to Truncate.
func Parse(raw string) (Money, error) {
	if !Valid(raw) {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return Money{d: d}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(raw string) Money {
	m, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return m
}

// Truncate drops digits beyond Scale, flooring.
func (m Money) Truncate() Money {
	return Money{d: m.d.RoundFloor(Scale)}
}

func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

// Cmp returns -1, 0 or +1 as m is less than, equal to or greater than o.
func (m Money) Cmp(o Money) int {
	return m.d.Cmp(o.d)
}

func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// Sign is the comparison against zero.
func (m Money) Sign() int {
	return m.d.Sign()
}

func (m Money) IsPositive() bool { return m.d.IsPositive() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }
func (m Money) IsZero() bool     { return m.d.IsZero() }

// Decimal exposes the underlying value for storage drivers.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// String renders exactly two decimals without rounding, e.g. "0.00".
func (m Money) String() string {
	return m.d.RoundFloor(Scale).StringFixed(Scale)
}

// MarshalJSON encodes the value as a quoted two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}
