package service

import (
	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/pricing"
)

// PricedLine is a cart line priced at the buyer's tier with the volume
// discount already applied. UnitPrice is the pre-discount per-unit price;
// LineTotal is the discounted total.
type PricedLine struct {
	ProductID       string
	SKU             string
	NameAr          string
	NameFr          string
	Quantity        int
	UnitPrice       int64
	DiscountPercent int
	LineTotal       int64
}

// PriceLines prices cart lines server-side: tier price per unit, then the
// volume discount for the line quantity. The client's displayed prices are
// never trusted.
func PriceLines(lines []domain.CartLine, wholesaleApproved bool, volume pricing.VolumeDiscountPolicy) []PricedLine {
	priced := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		unit := pricing.UnitPrice(line.Snapshot, wholesaleApproved)
		percent := volume.DiscountPercent(line.Quantity)
		gross := unit * int64(line.Quantity)

		priced = append(priced, PricedLine{
			ProductID:       line.ProductID.String(),
			SKU:             line.Snapshot.SKU,
			NameAr:          line.Snapshot.NameAr,
			NameFr:          line.Snapshot.NameFr,
			Quantity:        line.Quantity,
			UnitPrice:       unit,
			DiscountPercent: percent,
			LineTotal:       pricing.ApplyDiscount(gross, percent),
		})
	}
	return priced
}

// ComputeTotals derives the order totals from priced lines and the shipping
// destination. Subtotal is the pre-discount sum; Discount is the volume
// savings; shipping is computed on the discounted goods total.
func ComputeTotals(priced []PricedLine, gov domain.Governorate, isWholesale, wholesaleApproved bool) domain.CheckoutTotals {
	var subtotal, discounted int64
	for _, line := range priced {
		subtotal += line.UnitPrice * int64(line.Quantity)
		discounted += line.LineTotal
	}

	quote := pricing.CalculateShipping(gov, discounted, isWholesale, wholesaleApproved)
	return domain.CheckoutTotals{
		Subtotal:    subtotal,
		Discount:    subtotal - discounted,
		ShippingFee: quote.Final,
		Total:       discounted + quote.Final,
	}
}
