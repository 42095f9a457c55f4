package coinwatch

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// Quantity is an amount of coins held by the user.
type Quantity struct {
	value decimal.Decimal
}

// Q returns a Quantity from any supported numeric value.
func Q[T float64 | int | int64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

// ParseQuantity parses a holdings amount as typed by a user.
//
// It rejects anything that is not a finite, non-negative number.
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, &ValidationError{Field: "holdings", Value: s, Reason: "not a number"}
	}
	if d.IsNegative() {
		return Quantity{}, &ValidationError{Field: "holdings", Value: s, Reason: "must not be negative"}
	}
	return Quantity{value: d}, nil
}

// QuantityFromFloat converts a float holdings amount, rejecting NaN, infinities
// and negative values.
func QuantityFromFloat(f float64) (Quantity, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Quantity{}, &ValidationError{Field: "holdings", Value: f, Reason: "not a finite number"}
	}
	if f < 0 {
		return Quantity{}, &ValidationError{Field: "holdings", Value: f, Reason: "must not be negative"}
	}
	return Q(f), nil
}

func (q Quantity) Decimal() decimal.Decimal       { return q.value }
func (q Quantity) Equal(p Quantity) bool          { return q.value.Equal(p.value) }
func (q Quantity) IsNegative() bool               { return q.value.IsNegative() }
func (q Quantity) IsZero() bool                   { return q.value.IsZero() }
func (q Quantity) String() string                 { return q.value.String() }
func (q Quantity) Add(p Quantity) Quantity        { return Quantity{value: q.value.Add(p.value)} }
func (q Quantity) GreaterThan(p Quantity) bool    { return q.value.GreaterThan(p.value) }
func (q Quantity) InexactFloat64() float64        { return q.value.InexactFloat64() }

// MarshalJSON writes the quantity as a bare JSON number.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(json.Number(q.value.String()))
}

// UnmarshalJSON accepts JSON numbers, quoted numbers and null (zero).
func (q *Quantity) UnmarshalJSON(data []byte) error {
	return q.value.UnmarshalJSON(data)
}
