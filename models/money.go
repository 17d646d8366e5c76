package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point currency amount with 2 decimal places. On the
// wire it is always a quoted decimal string ("1250.00"), never a binary
// float; in MySQL it maps to DECIMAL columns.
type Money struct {
	d decimal.Decimal
}

// NewMoney builds a Money from a decimal value, rounded half-up to
// 2 decimal places.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

// ParseMoney parses a decimal string such as "50" or "1250.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return NewMoney(d), nil
}

// MustMoney parses a decimal string and panics on failure. For
// constants and tests only.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func ZeroMoney() Money { return Money{d: decimal.Zero} }

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money    { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money    { return Money{d: m.d.Sub(o.d)} }
func (m Money) MulInt(n int64) Money { return Money{d: m.d.Mul(decimal.NewFromInt(n))} }

func (m Money) Cmp(o Money) int      { return m.d.Cmp(o.d) }
func (m Money) IsZero() bool         { return m.d.IsZero() }
func (m Money) IsNegative() bool     { return m.d.IsNegative() }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }
func (m Money) LessThan(o Money) bool    { return m.d.LessThan(o.d) }

// String renders the amount with exactly 2 fraction digits.
func (m Money) String() string { return m.d.StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Tolerate bare JSON numbers from older clients.
		s = string(data)
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer so Money binds to DECIMAL parameters.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner for DECIMAL columns.
func (m *Money) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = ZeroMoney()
		return nil
	case []byte:
		parsed, err := ParseMoney(string(v))
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case string:
		parsed, err := ParseMoney(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case float64:
		*m = NewMoney(decimal.NewFromFloat(v))
		return nil
	case int64:
		*m = NewMoney(decimal.NewFromInt(v))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", src)
	}
}
