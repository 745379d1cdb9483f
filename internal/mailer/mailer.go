package mailer

import "context"

// Event names the Dispatcher understands
const (
	EventOrderConfirmed    = "order_confirmed"
	EventOrderShipped      = "order_shipped"
	EventOrderCancelled    = "order_cancelled"
	EventNewOrderAdmin     = "new_order_admin"
	EventWholesaleApproved = "wholesale_approved"
	EventWholesaleRejected = "wholesale_rejected"
)

// Payload carries the typed fields an event email needs
type Payload struct {
	To           string
	CustomerName string
	OrderNumber  string
	Total        int64 // millimes
	Reason       string
}

// Mailer sends a single email. Implementations must not retry; the
// dispatcher treats every send as fire-and-forget.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
