// Package pricing holds the pure price and volume rules shared by the
// draft reconciler and the live previews: discounted prices, volume
// normalization and the price-variant table.
package pricing

import (
	"strings"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Inputs outside these bounds count as unparseable.
const (
	maxInputLen = 64
	maxExponent = 15
	minExponent = -30
)

var maxMagnitude = decimal.New(1, maxExponent)

// Coerce turns raw input into a number. Empty, non-numeric, NaN, infinite
// and out of range input all become zero.
func Coerce(raw domain.RawNumber) decimal.Decimal {
	d, ok := parse(raw)
	if !ok {
		return decimal.Zero
	}
	return d
}

func parse(raw domain.RawNumber) (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || len(s) > maxInputLen {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	// check the exponent before anything that rescales
	if exp := d.Exponent(); exp > maxExponent || exp < minExponent {
		return decimal.Zero, false
	}
	if d.Abs().GreaterThanOrEqual(maxMagnitude) {
		return decimal.Zero, false
	}
	return d, true
}

// ClampPercent limits a discount to [0, 100].
func ClampPercent(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}

// FinalPrice applies a clamped percentage discount and rounds the result to
// two places, half away from zero.
func FinalPrice(original, discountPercent decimal.Decimal) decimal.Decimal {
	d := ClampPercent(discountPercent)
	return original.Mul(hundred.Sub(d)).Div(hundred).Round(2)
}

// ComputeFinalPrice is FinalPrice over raw form input.
func ComputeFinalPrice(original, discountPercent domain.RawNumber) decimal.Decimal {
	return FinalPrice(Coerce(original), Coerce(discountPercent))
}

// DiscountPercent coerces, clamps and truncates a discount to the integer
// the store keeps.
func DiscountPercent(raw domain.RawNumber) int {
	return int(ClampPercent(Coerce(raw)).IntPart())
}

// NonNegative coerces a price and raises negative values to zero.
func NonNegative(raw domain.RawNumber) decimal.Decimal {
	d := Coerce(raw)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// SalePrice is the final price the store keeps for raw form input: the
// price raised to zero if negative, discounted by the integer percentage
// from DiscountPercent. Live previews show it.
func SalePrice(original, discountPercent domain.RawNumber) decimal.Decimal {
	return FinalPrice(NonNegative(original), decimal.NewFromInt(int64(DiscountPercent(discountPercent))))
}
