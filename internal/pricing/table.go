package pricing

import (
	"fmt"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/shopspring/decimal"
)

// DuplicatePolicy decides what adding an existing volume does.
type DuplicatePolicy int

const (
	// Replace overwrites the row with the same volume in place
	Replace DuplicatePolicy = iota
	// Append keeps both rows
	Append
)

func (p DuplicatePolicy) String() string {
	switch p {
	case Replace:
		return "replace"
	case Append:
		return "append"
	default:
		return "unknown"
	}
}

// ParseDuplicatePolicy reads the policy name used in configuration.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "replace":
		return Replace, nil
	case "append":
		return Append, nil
	}
	return Replace, fmt.Errorf("unknown duplicate volume policy %q", s)
}

// Table is an ordered price-variant table. Every method returns a new
// table and leaves the receiver untouched.
type Table struct {
	rows   []domain.Variant
	policy DuplicatePolicy
}

func NewTable(rows []domain.Variant, policy DuplicatePolicy) Table {
	return Table{rows: append([]domain.Variant{}, rows...), policy: policy}
}

// Rows returns a copy of the table's rows.
func (t Table) Rows() []domain.Variant {
	return append([]domain.Variant{}, t.rows...)
}

func (t Table) Len() int {
	return len(t.rows)
}

// Add builds a row from raw input. A volume that isn't a positive integer is
// reported as a validation failure and the table is returned unchanged.
func (t Table) Add(volume, originalPrice, discountPercent domain.RawNumber) (Table, error) {
	ml, ok := Volume(volume)
	if !ok {
		return t, domain.NewValidationError("volume", "gt", "volume must be a positive integer")
	}

	row := BuildVariant(ml, originalPrice, discountPercent)
	rows := t.Rows()

	if t.policy == Replace {
		for i := range rows {
			if rows[i].Volume == ml {
				rows[i] = row
				return Table{rows: rows, policy: t.policy}, nil
			}
		}
	}

	return Table{rows: append(rows, row), policy: t.policy}, nil
}

// Remove drops the row at index. An index out of range is a no-op.
func (t Table) Remove(index int) Table {
	if index < 0 || index >= len(t.rows) {
		return t
	}
	rows := make([]domain.Variant, 0, len(t.rows)-1)
	rows = append(rows, t.rows[:index]...)
	rows = append(rows, t.rows[index+1:]...)
	return Table{rows: rows, policy: t.policy}
}

// Recompute derives every row again from its original price and discount.
// Under Replace, rows sharing a volume collapse onto the last one written,
// kept at the position of the first.
func (t Table) Recompute() Table {
	rows := make([]domain.Variant, 0, len(t.rows))
	index := make(map[int]int, len(t.rows))

	for _, r := range t.rows {
		if r.Volume <= 0 {
			continue
		}
		row := Reprice(r)
		if t.policy == Replace {
			if i, ok := index[row.Volume]; ok {
				rows[i] = row
				continue
			}
			index[row.Volume] = len(rows)
		}
		rows = append(rows, row)
	}

	return Table{rows: rows, policy: t.policy}
}

// BuildVariant makes a row with a non-negative price, a clamped integer
// discount and the derived final price.
func BuildVariant(volume int, originalPrice, discountPercent domain.RawNumber) domain.Variant {
	return domain.Variant{
		Volume:          volume,
		OriginalPrice:   NonNegative(originalPrice).InexactFloat64(),
		DiscountPercent: DiscountPercent(discountPercent),
		FinalPrice:      SalePrice(originalPrice, discountPercent).InexactFloat64(),
	}
}

// Reprice rebuilds a stored row so a stale final price never survives.
func Reprice(v domain.Variant) domain.Variant {
	price := decimal.NewFromFloat(v.OriginalPrice)
	if price.IsNegative() {
		price = decimal.Zero
	}
	discount := int(ClampPercent(decimal.NewFromInt(int64(v.DiscountPercent))).IntPart())

	return domain.Variant{
		Volume:          v.Volume,
		OriginalPrice:   price.InexactFloat64(),
		DiscountPercent: discount,
		FinalPrice:      FinalPrice(price, decimal.NewFromInt(int64(discount))).InexactFloat64(),
	}
}
