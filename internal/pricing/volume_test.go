package pricing

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeVolumes(t *testing.T) {
	testCases := []struct {
		name string
		raw  []domain.RawNumber
		want []int
	}{
		{"Mixed input", []domain.RawNumber{"50", "30", "30", "-5", "0", "100", "x"}, []int{30, 50, 100}},
		{"Nil input", nil, []int{}},
		{"Fractions truncate", []domain.RawNumber{"12.7", "12", "0.5"}, []int{12}},
		{"Exponent notation", []domain.RawNumber{"1e2", "100"}, []int{100}},
		{"Non-finite values", []domain.RawNumber{"NaN", "Infinity", "-Infinity", ""}, []int{}},
		{"Already sorted", []domain.RawNumber{"5", "10", "15"}, []int{5, 10, 15}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeVolumes(tc.raw))
		})
	}
}

func TestNormalizeVolumes_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tokens := []string{"x", "", "-1", "0", "0.5", "NaN", "1e3"}

	for i := 0; i < 200; i++ {
		n := rng.Intn(20)
		raw := make([]domain.RawNumber, 0, n)
		for j := 0; j < n; j++ {
			if rng.Intn(4) == 0 {
				raw = append(raw, domain.RawNumber(tokens[rng.Intn(len(tokens))]))
				continue
			}
			raw = append(raw, domain.RawNumber(strconv.Itoa(rng.Intn(400)-100)))
		}

		once := NormalizeVolumes(raw)
		assert.Equal(t, once, NormalizeSizes(once), "input %v", raw)
	}
}

func TestVolume(t *testing.T) {
	v, ok := Volume("75")
	assert.True(t, ok)
	assert.Equal(t, 75, v)

	_, ok = Volume("99999999999999999999")
	assert.False(t, ok)

	_, ok = Volume("-1")
	assert.False(t, ok)
}

func TestNormalizeSizes(t *testing.T) {
	assert.Equal(t, []int{10, 20}, NormalizeSizes([]int{20, 10, 20, 0, -4}))
}
