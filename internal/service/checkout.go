package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/i18n"
	"github.com/oudaybenrhouma/ghalinino-api/internal/pricing"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

// CheckoutStep names the four stages of checkout in order
type CheckoutStep string

const (
	StepAuth     CheckoutStep = "auth"
	StepShipping CheckoutStep = "shipping"
	StepPayment  CheckoutStep = "payment"
	StepReview   CheckoutStep = "review"
)

// CheckoutIdentity is who is buying: an authenticated customer or a guest
// identified by contact details.
type CheckoutIdentity struct {
	CustomerID        *uuid.UUID
	Name              string
	Phone             string
	Email             *string
	IsWholesale       bool
	WholesaleApproved bool
}

// complete reports whether the identity step can be passed
func (id CheckoutIdentity) complete() bool {
	if id.CustomerID != nil {
		return true
	}
	return id.Name != "" && id.Phone != ""
}

// Checkout is the per-viewer checkout state machine: auth, shipping,
// payment, review, strictly in order. Completed steps stay revisitable;
// re-submitting one overwrites only that step's data, later steps keep
// theirs. The current step is derived from what has been filled in, so
// skipping ahead is structurally impossible.
type Checkout struct {
	mu       sync.Mutex
	identity CheckoutIdentity
	hasID    bool
	address  domain.ShippingAddress
	method   domain.PaymentMethod
	volume   pricing.VolumeDiscountPolicy
}

// NewCheckout starts an empty checkout with the given volume discount policy
func NewCheckout(volume pricing.VolumeDiscountPolicy) *Checkout {
	return &Checkout{volume: volume}
}

// Step returns the first step still missing data
func (c *Checkout) Step() CheckoutStep {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case !c.hasID:
		return StepAuth
	case !c.address.Complete():
		return StepShipping
	case !c.method.IsValid():
		return StepPayment
	default:
		return StepReview
	}
}

// SetIdentity completes the auth step. Guests must give a name and phone.
func (c *Checkout) SetIdentity(identity CheckoutIdentity) error {
	if !identity.complete() {
		return &errors.ErrValidation{
			Message:    "name and phone are required",
			MessageKey: i18n.KeyAddressIncomplete,
			Fields:     map[string]string{"name": "required", "phone": "required"},
		}
	}

	c.mu.Lock()
	c.identity = identity
	c.hasID = true
	c.mu.Unlock()
	return nil
}

// SetAddress completes the shipping step. Rejected before auth is done and
// whenever a required field or the governorate is missing or unknown.
func (c *Checkout) SetAddress(address domain.ShippingAddress) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasID {
		return &errors.ErrConflict{Message: "identity step not completed"}
	}
	if !address.Complete() {
		return &errors.ErrValidation{
			Message:    "shipping address incomplete",
			MessageKey: i18n.KeyAddressIncomplete,
			Fields:     missingAddressFields(address),
		}
	}

	c.address = address
	return nil
}

// SetPaymentMethod completes the payment step
func (c *Checkout) SetPaymentMethod(method domain.PaymentMethod) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasID || !c.address.Complete() {
		return &errors.ErrConflict{Message: "earlier checkout steps not completed"}
	}
	if !method.IsValid() {
		return &errors.ErrValidation{
			Message:    "payment method missing or unknown",
			MessageKey: i18n.KeyPaymentMethodMissing,
			Fields:     map[string]string{"payment_method": "invalid"},
		}
	}

	c.method = method
	return nil
}

// Identity returns the buyer set in the auth step
func (c *Checkout) Identity() CheckoutIdentity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Address returns the shipping address set so far
func (c *Checkout) Address() domain.ShippingAddress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address
}

// PaymentMethod returns the payment method set so far
func (c *Checkout) PaymentMethod() domain.PaymentMethod {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.method
}

// ReviewSummary is everything shown on the review step
type ReviewSummary struct {
	Lines   []PricedLine          `json:"lines"`
	Totals  domain.CheckoutTotals `json:"totals"`
	Minimum pricing.Progress      `json:"minimum_order"`
}

// Review prices the cart at the buyer's tier and computes the totals for
// the review step. Only reachable once all earlier steps are complete.
func (c *Checkout) Review(snapshot CartSnapshot) (ReviewSummary, error) {
	if c.Step() != StepReview {
		return ReviewSummary{}, &errors.ErrConflict{Message: "earlier checkout steps not completed"}
	}

	c.mu.Lock()
	identity, address, volume := c.identity, c.address, c.volume
	c.mu.Unlock()

	priced := PriceLines(snapshot.Lines, identity.WholesaleApproved, volume)
	totals := ComputeTotals(priced, address.Governorate, identity.IsWholesale, identity.WholesaleApproved)

	var discounted int64
	for _, line := range priced {
		discounted += line.LineTotal
	}

	return ReviewSummary{
		Lines:   priced,
		Totals:  totals,
		Minimum: pricing.MinimumOrderProgress(discounted, identity.WholesaleApproved),
	}, nil
}

// ValidateSubmit re-checks everything submission depends on against the
// current cart: non-empty cart, all steps complete, and for approved
// wholesale buyers the minimum order against the fresh subtotal. Accounts
// still pending or rejected buy at retail and are not held to the minimum.
// Called from the review step immediately before submission.
func (c *Checkout) ValidateSubmit(snapshot CartSnapshot) error {
	if len(snapshot.Lines) == 0 {
		return &errors.ErrValidation{Message: "cart is empty", MessageKey: i18n.KeyCartEmpty}
	}
	if step := c.Step(); step != StepReview {
		switch step {
		case StepPayment:
			return &errors.ErrValidation{Message: "payment method missing", MessageKey: i18n.KeyPaymentMethodMissing}
		default:
			return &errors.ErrValidation{Message: "checkout incomplete", MessageKey: i18n.KeyAddressIncomplete}
		}
	}

	c.mu.Lock()
	identity, volume := c.identity, c.volume
	c.mu.Unlock()

	if identity.WholesaleApproved {
		priced := PriceLines(snapshot.Lines, true, volume)
		var discounted int64
		for _, line := range priced {
			discounted += line.LineTotal
		}
		if progress := pricing.MinimumOrderProgress(discounted, true); !progress.IsMet {
			return &errors.ErrMinimumOrder{
				Minimum:   pricing.WholesaleMinimumOrder,
				Total:     discounted,
				Remaining: progress.AmountRemaining,
			}
		}
	}
	return nil
}

func missingAddressFields(a domain.ShippingAddress) map[string]string {
	fields := make(map[string]string)
	if a.FullName == "" {
		fields["full_name"] = "required"
	}
	if a.Phone == "" {
		fields["phone"] = "required"
	}
	if a.AddressLine1 == "" {
		fields["address_line1"] = "required"
	}
	if a.City == "" {
		fields["city"] = "required"
	}
	if !a.Governorate.IsValid() {
		fields["governorate"] = "invalid"
	}
	return fields
}
