package domain

// OrderStatus represents the status of an order
type OrderStatus string

const (
	// PENDING - order created, awaiting payment or processing
	OrderStatusPending OrderStatus = "pending"
	// PAYMENT_PENDING - bank-transfer proof uploaded, awaiting admin confirmation
	OrderStatusPaymentPending OrderStatus = "payment_pending"
	// PAID - payment confirmed (gateway verified or admin confirmed)
	OrderStatusPaid OrderStatus = "paid"
	// PROCESSING - order being prepared
	OrderStatusProcessing OrderStatus = "processing"
	// SHIPPED - order handed to the carrier
	OrderStatusShipped OrderStatus = "shipped"
	// DELIVERED - order delivered (terminal)
	OrderStatusDelivered OrderStatus = "delivered"
	// CANCELLED - order cancelled (terminal)
	OrderStatusCancelled OrderStatus = "cancelled"
	// REFUNDED - order refunded (terminal)
	OrderStatusRefunded OrderStatus = "refunded"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusPaymentPending,
		OrderStatusPaid,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
		OrderStatusRefunded:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusRefunded
}

// CanTransitionTo checks if a status transition is valid
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return newStatus == OrderStatusPaymentPending ||
			newStatus == OrderStatusPaid ||
			newStatus == OrderStatusProcessing ||
			newStatus == OrderStatusCancelled
	case OrderStatusPaymentPending:
		return newStatus == OrderStatusPaid ||
			newStatus == OrderStatusCancelled
	case OrderStatusPaid:
		return newStatus == OrderStatusProcessing ||
			newStatus == OrderStatusCancelled ||
			newStatus == OrderStatusRefunded
	case OrderStatusProcessing:
		return newStatus == OrderStatusShipped ||
			newStatus == OrderStatusCancelled
	case OrderStatusShipped:
		return newStatus == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return false // Terminal states
	default:
		return false
	}
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// PaymentMethod is one of the three supported payment paths
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodGateway        PaymentMethod = "gateway"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCashOnDelivery, PaymentMethodBankTransfer, PaymentMethodGateway:
		return true
	default:
		return false
	}
}

// WholesaleStatus represents a customer's wholesale approval state
type WholesaleStatus string

const (
	WholesaleStatusNone     WholesaleStatus = "none"
	WholesaleStatusPending  WholesaleStatus = "pending"
	WholesaleStatusApproved WholesaleStatus = "approved"
	WholesaleStatusRejected WholesaleStatus = "rejected"
)

// IsValid checks if the wholesale status is valid
func (s WholesaleStatus) IsValid() bool {
	switch s {
	case WholesaleStatusNone, WholesaleStatusPending, WholesaleStatusApproved, WholesaleStatusRejected:
		return true
	default:
		return false
	}
}
