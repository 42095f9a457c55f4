package coinwatch

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a percentage, 12.5 means 12.5%.
type Percent float64

// share returns part/total*100, and 0 when total is zero.
func share(part, total decimal.Decimal) Percent {
	if total.IsZero() {
		return 0
	}
	return Percent(part.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64())
}

// Equal compares with a precision of 1e-4.
func (p Percent) Equal(q Percent) bool {
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

// SignedString prints the percentage with an explicit sign, "-" for zero.
func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" {
		return "-"
	}
	return res
}
