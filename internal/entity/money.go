package entity

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is a currency amount with exactly two fraction digits.
type Money struct {
	d decimal.Decimal
}

// NewMoney rounds half away from zero to cents.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

// ParseMoney parses a plain decimal string ("45", "-3.5", "1234.56").
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d), nil
}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) String() string { return m.d.StringFixed(2) }

func (m Money) IsNegative() bool { return m.d.IsNegative() }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = p
	return nil
}
