package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultVolumeDiscount_Breakpoints(t *testing.T) {
	policy := DefaultVolumeDiscount()

	tests := []struct {
		qty  int
		want int
	}{
		{1, 0},
		{9, 0},
		{10, 5},
		{19, 5},
		{20, 10},
		{49, 10},
		{50, 15},
		{99, 15},
		{100, 20},
		{500, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, policy.DiscountPercent(tt.qty), "quantity %d", tt.qty)
	}
}

func TestNoVolumeDiscount(t *testing.T) {
	policy := NoVolumeDiscount()

	assert.Equal(t, 0, policy.DiscountPercent(1000))
}

func TestApplyDiscount(t *testing.T) {
	assert.Equal(t, int64(90000), ApplyDiscount(100000, 10))
	assert.Equal(t, int64(100000), ApplyDiscount(100000, 0))
	// Rounds down in the customer's favor
	assert.Equal(t, int64(95), ApplyDiscount(100, 5))
	assert.Equal(t, int64(94), ApplyDiscount(99, 5))
}
