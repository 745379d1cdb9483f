package pricing

// VolumeDiscountPolicy computes a per-line quantity discount in percent.
// Kept as an interface because the current table is store-wide and
// provisional; a per-product policy can replace it without touching callers.
type VolumeDiscountPolicy interface {
	DiscountPercent(quantity int) int
}

type breakpoint struct {
	MinQty  int
	Percent int
}

// tableVolumeDiscount is the default store-wide policy: fixed quantity
// breakpoints, highest qualifying breakpoint wins.
type tableVolumeDiscount struct {
	breakpoints []breakpoint // sorted by MinQty descending
}

// DefaultVolumeDiscount returns the store-wide table:
// 10/20/50/100 units -> 5/10/15/20 percent off.
func DefaultVolumeDiscount() VolumeDiscountPolicy {
	return &tableVolumeDiscount{
		breakpoints: []breakpoint{
			{MinQty: 100, Percent: 20},
			{MinQty: 50, Percent: 15},
			{MinQty: 20, Percent: 10},
			{MinQty: 10, Percent: 5},
		},
	}
}

func (t *tableVolumeDiscount) DiscountPercent(quantity int) int {
	for _, bp := range t.breakpoints {
		if quantity >= bp.MinQty {
			return bp.Percent
		}
	}
	return 0
}

// NoVolumeDiscount disables volume discounts entirely
func NoVolumeDiscount() VolumeDiscountPolicy {
	return noDiscount{}
}

type noDiscount struct{}

func (noDiscount) DiscountPercent(int) int { return 0 }

// ApplyDiscount applies a percentage discount to a line total, rounding down
func ApplyDiscount(amount int64, percent int) int64 {
	if percent <= 0 {
		return amount
	}
	return amount - amount*int64(percent)/100
}
