package pricing

import (
	"math"
	"sort"
	"strconv"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/shopspring/decimal"
)

var maxVolume = decimal.NewFromInt(math.MaxInt32)

// Volume coerces raw input to a volume in ml. Fractions are truncated; the
// result must be a positive integer.
func Volume(raw domain.RawNumber) (int, bool) {
	d, ok := parse(raw)
	if !ok {
		return 0, false
	}
	d = d.Truncate(0)
	if !d.IsPositive() || d.GreaterThan(maxVolume) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// NormalizeVolumes drops every entry that is not a positive volume, then
// returns the distinct values in ascending order.
func NormalizeVolumes(raw []domain.RawNumber) []int {
	seen := make(map[int]struct{}, len(raw))
	out := make([]int, 0, len(raw))
	for _, r := range raw {
		v, ok := Volume(r)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// NormalizeSizes is NormalizeVolumes for values that are already integers.
func NormalizeSizes(sizes []int) []int {
	raw := make([]domain.RawNumber, 0, len(sizes))
	for _, s := range sizes {
		raw = append(raw, domain.RawNumber(strconv.Itoa(s)))
	}
	return NormalizeVolumes(raw)
}
