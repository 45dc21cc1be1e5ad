// Package pricing holds the money arithmetic shared by the cart, the checkout
// quote and the order records: line totals, subtotals, quantity bounds, price
// coercion and the distance based delivery fee.
package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidPrice is returned when a value cannot be used as a price.
var ErrInvalidPrice = errors.New("invalid price")

// Line is anything that contributes price × quantity to a subtotal.
type Line interface {
	LineTotal() decimal.Decimal
}

// LineTotal returns price × quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Subtotal sums the line totals. It is recomputed on every call.
func Subtotal[L Line](lines []L) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// ClampQuantity bounds q to [min, max].
func ClampQuantity(q, min, max int) int {
	if q < min {
		return min
	}
	if q > max {
		return max
	}
	return q
}

// ParsePrice coerces the loosely typed prices found in catalog payloads
// ("450", 450, 450.0) into a decimal. Negative prices are rejected.
func ParsePrice(v any) (decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch p := v.(type) {
	case decimal.Decimal:
		d = p
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(p))
	case json.Number:
		d, err = decimal.NewFromString(p.String())
	case float64:
		d = decimal.NewFromFloat(p)
	case float32:
		d = decimal.NewFromFloat32(p)
	case int:
		d = decimal.NewFromInt(int64(p))
	case int64:
		d = decimal.NewFromInt(p)
	case int32:
		d = decimal.NewFromInt32(p)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidPrice, v)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidPrice, d)
	}
	return d, nil
}
