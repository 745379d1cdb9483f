package pricing

import (
	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
)

// All amounts are in millimes.
const (
	// FreeShippingThreshold is the cart total at which approved wholesale
	// orders ship free.
	FreeShippingThreshold int64 = 500000

	// WholesaleShippingDiscount is the flat discount approved wholesale
	// orders get below the free-shipping threshold.
	WholesaleShippingDiscount int64 = 3000

	// WholesaleMinimumOrder is the minimum cart total for wholesale checkout.
	WholesaleMinimumOrder int64 = 100000
)

// zoneFees are flat per-zone shipping fees; the capital region is cheapest.
var zoneFees = map[domain.ShippingZone]int64{
	domain.ZoneCapital: 5000,
	domain.ZoneNorth:   7000,
	domain.ZoneCenter:  9000,
	domain.ZoneSouth:   12000,
}

// UnitPrice returns the per-unit price for a product: the wholesale price
// when the viewer is an approved wholesale account and one exists, else the
// retail price. Non-approved viewers always pay retail.
func UnitPrice(p domain.ProductSnapshot, wholesaleApproved bool) int64 {
	if wholesaleApproved && p.WholesalePrice != nil {
		return *p.WholesalePrice
	}
	return p.RetailPrice
}

// ShippingQuote is the result of a shipping fee calculation
type ShippingQuote struct {
	Base              int64 `json:"base_shipping"`
	WholesaleDiscount int64 `json:"wholesale_discount"`
	Final             int64 `json:"final_shipping"`
	IsFree            bool  `json:"is_free"`
}

// CalculateShipping computes the shipping fee for a governorate and cart
// total. Retail viewers always pay the zone base fee. Approved wholesale
// viewers ship free at or above the free-shipping threshold, otherwise get a
// flat discount floored at zero. Pending/rejected wholesale status counts
// as retail.
func CalculateShipping(gov domain.Governorate, cartTotal int64, isWholesale, wholesaleApproved bool) ShippingQuote {
	base := zoneFees[gov.Zone()]
	quote := ShippingQuote{Base: base, Final: base}

	if !isWholesale || !wholesaleApproved {
		return quote
	}

	if cartTotal >= FreeShippingThreshold {
		quote.WholesaleDiscount = base
		quote.Final = 0
		quote.IsFree = true
		return quote
	}

	discount := WholesaleShippingDiscount
	if discount > base {
		discount = base
	}
	quote.WholesaleDiscount = discount
	quote.Final = base - discount
	return quote
}

// Progress reports how far a cart is from the wholesale minimum order
type Progress struct {
	Percentage      float64 `json:"percentage"`
	AmountRemaining int64   `json:"amount_remaining"`
	IsMet           bool    `json:"is_met"`
}

// MinimumOrderProgress returns the minimum-order progress for a cart total.
// Retail orders have no minimum and are always met.
func MinimumOrderProgress(total int64, isWholesale bool) Progress {
	if !isWholesale {
		return Progress{Percentage: 100, IsMet: true}
	}

	if total >= WholesaleMinimumOrder {
		return Progress{Percentage: 100, IsMet: true}
	}

	pct := float64(total) / float64(WholesaleMinimumOrder) * 100
	if pct > 100 {
		pct = 100
	}
	return Progress{
		Percentage:      pct,
		AmountRemaining: WholesaleMinimumOrder - total,
	}
}
