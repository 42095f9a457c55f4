package coinwatch

import (
	"encoding/json"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a price or a value in the portfolio's quote currency.
//
// Coins decoded from the market or from the persisted state carry no currency
// (the "" currency is weak and adopts the other operand's currency), views
// label them with In before printing.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns Money from any supported numeric value.
func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: strings.ToUpper(currency)}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the amount formatted with the currency symbol, rounded to the
// currency fraction.
func (m Money) String() string {
	if m.cur == "" {
		return m.value.StringFixed(2)
	}
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.Round(0).IntPart())
}

// PriceString returns the amount formatted as a unit price. It is String for
// amounts of one and above, smaller amounts keep 4 significant digits.
func (m Money) PriceString() string {
	fraction := int32(2)
	if m.cur != "" {
		fraction = int32(m.currency().Fraction)
	}
	places := pricePlaces(m.value, fraction)
	if m.cur == "" {
		return m.value.StringFixed(places)
	}
	cur := m.currency()
	f := cur.Formatter()
	f.Fraction = int(places)
	return f.Format(m.value.Shift(places).Round(0).IntPart())
}

// pricePlaces returns the decimal places needed to show 4 significant digits
// of v, trailing zeros removed, but never less than fraction.
func pricePlaces(v decimal.Decimal, fraction int32) int32 {
	abs := v.Abs()
	if abs.IsZero() || abs.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fraction
	}
	var lead int32
	for ; abs.LessThan(decimal.NewFromInt(1)); lead++ {
		abs = abs.Shift(1)
	}
	places := lead + 3
	rounded := v.Round(places)
	for places > fraction && rounded.Equal(rounded.Round(places-1)) {
		places--
	}
	return max(places, fraction)
}

// In returns the same amount labelled with currency.
func (m Money) In(currency string) Money {
	return Money{value: m.value, cur: strings.ToUpper(currency)}
}

// bare returns the same amount without currency.
func (m Money) bare() Money { return Money{value: m.value} }

func (m Money) Currency() string              { return m.cur }
func (m Money) Decimal() decimal.Decimal      { return m.value }
func (m Money) Equal(n Money) bool            { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                  { return m.value.IsZero() }
func (m Money) IsPositive() bool              { return m.value.IsPositive() }
func (m Money) LessThan(n Money) bool         { return m.value.LessThan(n.value) }
func (m Money) Mul(q Quantity) Money          { return Money{value: m.value.Mul(q.value), cur: m.cur} }
func (m Money) Add(n Money) Money             { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) InexactFloat64() float64       { return m.value.InexactFloat64() }

// makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// MarshalJSON writes the amount as a bare JSON number, the way the market API
// and the persisted state represent prices.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(json.Number(m.value.String()))
}

// UnmarshalJSON accepts JSON numbers, quoted numbers and null (zero).
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.value.UnmarshalJSON(data)
}
