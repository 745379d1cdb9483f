package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
)

func int64Ptr(v int64) *int64 { return &v }

func TestUnitPrice_RetailViewerAlwaysPaysRetail(t *testing.T) {
	p := domain.ProductSnapshot{
		RetailPrice:    12000,
		WholesalePrice: int64Ptr(9000),
	}

	assert.Equal(t, int64(12000), UnitPrice(p, false))
}

func TestUnitPrice_ApprovedWholesaleGetsWholesalePrice(t *testing.T) {
	p := domain.ProductSnapshot{
		RetailPrice:    12000,
		WholesalePrice: int64Ptr(9000),
	}

	assert.Equal(t, int64(9000), UnitPrice(p, true))
}

func TestUnitPrice_ApprovedWholesaleWithoutWholesalePriceFallsBackToRetail(t *testing.T) {
	p := domain.ProductSnapshot{RetailPrice: 12000}

	assert.Equal(t, int64(12000), UnitPrice(p, true))
}

func TestCalculateShipping_RetailCapitalZone(t *testing.T) {
	quote := CalculateShipping(domain.GovernorateTunis, 80000, false, false)

	assert.Equal(t, int64(5000), quote.Base)
	assert.Equal(t, int64(5000), quote.Final)
	assert.Equal(t, int64(0), quote.WholesaleDiscount)
	assert.False(t, quote.IsFree)
}

func TestCalculateShipping_RetailNeverGetsFreeShipping(t *testing.T) {
	quote := CalculateShipping(domain.GovernorateTunis, 2*FreeShippingThreshold, false, false)

	assert.False(t, quote.IsFree)
	assert.Equal(t, int64(5000), quote.Final)
}

func TestCalculateShipping_WholesaleFreeAboveThreshold(t *testing.T) {
	quote := CalculateShipping(domain.GovernorateSfax, FreeShippingThreshold, true, true)

	assert.True(t, quote.IsFree)
	assert.Equal(t, int64(0), quote.Final)
	assert.Equal(t, quote.Base, quote.WholesaleDiscount)
}

func TestCalculateShipping_WholesaleFlatDiscountBelowThreshold(t *testing.T) {
	quote := CalculateShipping(domain.GovernorateSousse, 200000, true, true)

	assert.False(t, quote.IsFree)
	assert.Equal(t, int64(9000), quote.Base)
	assert.Equal(t, WholesaleShippingDiscount, quote.WholesaleDiscount)
	assert.Equal(t, int64(9000)-WholesaleShippingDiscount, quote.Final)
}

func TestCalculateShipping_DiscountFlooredAtZero(t *testing.T) {
	// No zone fee is below the flat discount today, but the floor must hold
	// if fees ever drop.
	quote := CalculateShipping(domain.GovernorateTunis, 100000, true, true)

	assert.GreaterOrEqual(t, quote.Final, int64(0))
}

func TestCalculateShipping_PendingWholesaleTreatedAsRetail(t *testing.T) {
	quote := CalculateShipping(domain.GovernorateTunis, FreeShippingThreshold, true, false)

	assert.False(t, quote.IsFree)
	assert.Equal(t, quote.Base, quote.Final)
}

func TestCalculateShipping_ZoneFees(t *testing.T) {
	tests := []struct {
		gov  domain.Governorate
		want int64
	}{
		{domain.GovernorateAriana, 5000},
		{domain.GovernorateBizerte, 7000},
		{domain.GovernorateKairouan, 9000},
		{domain.GovernorateTataouine, 12000},
	}
	for _, tt := range tests {
		quote := CalculateShipping(tt.gov, 10000, false, false)
		assert.Equal(t, tt.want, quote.Final, "governorate %s", tt.gov)
	}
}

func TestMinimumOrderProgress_RetailAlwaysMet(t *testing.T) {
	progress := MinimumOrderProgress(0, false)

	assert.True(t, progress.IsMet)
	assert.Equal(t, float64(100), progress.Percentage)
	assert.Equal(t, int64(0), progress.AmountRemaining)
}

func TestMinimumOrderProgress_WholesaleBelowMinimum(t *testing.T) {
	progress := MinimumOrderProgress(60000, true)

	assert.False(t, progress.IsMet)
	assert.Equal(t, int64(40000), progress.AmountRemaining)
	assert.InDelta(t, 60.0, progress.Percentage, 0.001)
}

func TestMinimumOrderProgress_WholesaleAtMinimum(t *testing.T) {
	progress := MinimumOrderProgress(WholesaleMinimumOrder, true)

	assert.True(t, progress.IsMet)
	assert.Equal(t, float64(100), progress.Percentage)
	assert.Equal(t, int64(0), progress.AmountRemaining)
}
