package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog product with bilingual naming
type Product struct {
	ID              uuid.UUID
	SKU             string
	NameAr          string
	NameFr          string
	DescriptionAr   *string
	DescriptionFr   *string
	RetailPrice     int64  // millimes
	WholesalePrice  *int64 // millimes; nil when no wholesale tier exists
	CompareAtPrice  *int64
	AvailableStock  int
	WholesaleMinQty int
	ImageURL        *string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProductSnapshot is the pricing/stock view a cart line carries.
// Captured at validation time; never trusted across operations.
type ProductSnapshot struct {
	ProductID       uuid.UUID
	SKU             string
	NameAr          string
	NameFr          string
	RetailPrice     int64
	WholesalePrice  *int64
	CompareAtPrice  *int64
	AvailableStock  int
	WholesaleMinQty int
	IsActive        bool
}

// Snapshot builds the cart-line view of a product
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ProductID:       p.ID,
		SKU:             p.SKU,
		NameAr:          p.NameAr,
		NameFr:          p.NameFr,
		RetailPrice:     p.RetailPrice,
		WholesalePrice:  p.WholesalePrice,
		CompareAtPrice:  p.CompareAtPrice,
		AvailableStock:  p.AvailableStock,
		WholesaleMinQty: p.WholesaleMinQty,
		IsActive:        p.IsActive,
	}
}

// WholesaleProfile is a read-only input to pricing; approval is an admin workflow
type WholesaleProfile struct {
	Status       WholesaleStatus
	DiscountTier int
}

// Approved reports whether the viewer gets wholesale pricing.
// Pending/rejected/none are all treated as retail.
func (w WholesaleProfile) Approved() bool {
	return w.Status == WholesaleStatusApproved
}

// Customer represents a registered customer account
type Customer struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	IsAdmin      bool
	Wholesale    WholesaleProfile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a bearer-token login session.
// TokenLookup is SHA256(token) hex for fast lookup; TokenHash is bcrypt for verification.
type Session struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	TokenHash   string
	TokenLookup string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Cart is the authenticated cart record; guest carts live in Redis only
type Cart struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartLine pairs a product with a quantity.
// Invariant: 1 <= Quantity <= Snapshot.AvailableStock whenever the line is visible.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
	Snapshot  ProductSnapshot
}

// StoredCartLine is the durable (product, quantity) pair. Snapshots are
// rehydrated against live product data on load, never persisted.
type StoredCartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// ShippingAddress is required in full before the payment step is reachable
type ShippingAddress struct {
	FullName     string      `json:"full_name"`
	Phone        string      `json:"phone"`
	AddressLine1 string      `json:"address_line1"`
	AddressLine2 *string     `json:"address_line2,omitempty"`
	City         string      `json:"city"`
	Governorate  Governorate `json:"governorate"`
	PostalCode   *string     `json:"postal_code,omitempty"`
}

// Complete reports whether every required field is present
func (a ShippingAddress) Complete() bool {
	return a.FullName != "" &&
		a.Phone != "" &&
		a.AddressLine1 != "" &&
		a.City != "" &&
		a.Governorate.IsValid()
}

// CheckoutTotals is derived from the cart snapshot, governorate and wholesale
// tier; never persisted independently of the order it produces.
type CheckoutTotals struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shipping_fee"`
	Discount    int64 `json:"discount"`
	Total       int64 `json:"total"`
}

// Order is created once per checkout submission; mutated afterwards only by
// admin actions or by the customer uploading bank-transfer proof.
type Order struct {
	ID                   uuid.UUID
	OrderNumber          string
	CustomerID           *uuid.UUID // nil for guest orders
	CustomerName         string
	CustomerPhone        string
	CustomerEmail        *string
	Status               OrderStatus
	PaymentStatus        PaymentStatus
	PaymentMethod        PaymentMethod
	IsWholesale          bool
	Totals               CheckoutTotals
	ShippingAddress      ShippingAddress
	BankTransferProofURL *string
	GatewayToken         *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// OrderItem is a frozen snapshot of a product at submission time,
// immune to later catalog changes.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	SKU       string
	Name      string
	UnitPrice int64
	Quantity  int
	LineTotal int64
	CreatedAt time.Time
}

// IdempotencyKey stores idempotency information for checkout submission
type IdempotencyKey struct {
	Key         string
	OrderID     uuid.UUID
	RequestHash string
	CreatedAt   time.Time
}

// OrderEvent represents an audit event for an order
type OrderEvent struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	EventType string
	EventData map[string]interface{} // JSONB
	CreatedAt time.Time
}
