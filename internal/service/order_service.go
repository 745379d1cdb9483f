package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/i18n"
	"github.com/oudaybenrhouma/ghalinino-api/internal/mailer"
	"github.com/oudaybenrhouma/ghalinino-api/internal/paymee"
	"github.com/oudaybenrhouma/ghalinino-api/internal/pricing"
	"github.com/oudaybenrhouma/ghalinino-api/internal/repository"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

// PaymentGateway is the slice of the gateway client the order service needs
type PaymentGateway interface {
	Enabled() bool
	CreateSession(ctx context.Context, amount int64, orderNumber string) (*paymee.Session, error)
	VerifySession(ctx context.Context, token string) (bool, error)
}

// Notifier dispatches event emails fire-and-forget
type Notifier interface {
	Dispatch(event string, payload mailer.Payload)
}

// OrderService owns order submission and every later order mutation.
// Submission is all-or-nothing: stock re-validation, server-side pricing and
// the transactional write either all succeed or leave nothing behind.
type OrderService struct {
	repos   *repository.Repositories
	stock   *StockValidator
	gateway PaymentGateway
	mail    Notifier
	volume  pricing.VolumeDiscountPolicy
	logger  *zap.Logger
}

// NewOrderService creates an order service
func NewOrderService(repos *repository.Repositories, stock *StockValidator, gateway PaymentGateway, mail Notifier, volume pricing.VolumeDiscountPolicy, logger *zap.Logger) *OrderService {
	return &OrderService{
		repos:   repos,
		stock:   stock,
		gateway: gateway,
		mail:    mail,
		volume:  volume,
		logger:  logger,
	}
}

// SubmitInput is everything a checkout submission carries
type SubmitInput struct {
	Identity CheckoutIdentity
	Address  domain.ShippingAddress
	Method   domain.PaymentMethod
	Lines    []domain.CartLine
}

// SubmitResult is the outcome of a successful submission. RedirectURL is set
// for gateway orders; BankReference for bank transfers.
type SubmitResult struct {
	Order         *domain.Order
	Items         []*domain.OrderItem
	RedirectURL   string
	BankReference string
}

// SubmitOrder turns a validated checkout into exactly one order.
//
// Stock is re-validated per line against live inventory and any shortfall
// fails the whole submission. Prices and totals are recomputed server-side
// from fresh product reads. For gateway payments the hosted session is
// created before anything is persisted, so a gateway failure leaves no
// order behind. The order, its frozen items and the stock decrements are
// one database transaction.
func (s *OrderService) SubmitOrder(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if len(input.Lines) == 0 {
		return nil, &errors.ErrValidation{Message: "cart is empty", MessageKey: i18n.KeyCartEmpty}
	}
	if !input.Address.Complete() {
		return nil, &errors.ErrValidation{Message: "shipping address incomplete", MessageKey: i18n.KeyAddressIncomplete}
	}
	if !input.Method.IsValid() {
		return nil, &errors.ErrValidation{Message: "payment method missing", MessageKey: i18n.KeyPaymentMethodMissing}
	}

	// Fresh stock pass; the cart's snapshots are display data, not truth
	fresh := make([]domain.CartLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		result := s.stock.Validate(ctx, line.ProductID, line.Quantity)
		if result.Product == nil {
			return nil, &errors.ErrValidation{Message: "product unavailable", MessageKey: i18n.KeyProductUnavailable}
		}
		if !result.Valid {
			return nil, &errors.ErrStockConflict{
				ProductID: line.ProductID.String(),
				Requested: line.Quantity,
				Available: result.AvailableStock,
			}
		}
		fresh = append(fresh, domain.CartLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Snapshot:  *result.Product,
		})
	}

	priced := PriceLines(fresh, input.Identity.WholesaleApproved, s.volume)
	totals := ComputeTotals(priced, input.Address.Governorate, input.Identity.IsWholesale, input.Identity.WholesaleApproved)

	if input.Identity.WholesaleApproved {
		goods := totals.Subtotal - totals.Discount
		if progress := pricing.MinimumOrderProgress(goods, true); !progress.IsMet {
			return nil, &errors.ErrMinimumOrder{
				Minimum:   pricing.WholesaleMinimumOrder,
				Total:     goods,
				Remaining: progress.AmountRemaining,
			}
		}
	}

	orderNumber, err := generateOrderNumber()
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:              uuid.New(),
		OrderNumber:     orderNumber,
		CustomerID:      input.Identity.CustomerID,
		CustomerName:    input.Identity.Name,
		CustomerPhone:   input.Identity.Phone,
		CustomerEmail:   input.Identity.Email,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		PaymentMethod:   input.Method,
		IsWholesale:     input.Identity.IsWholesale,
		Totals:          totals,
		ShippingAddress: input.Address,
	}
	if order.CustomerName == "" {
		order.CustomerName = input.Address.FullName
	}
	if order.CustomerPhone == "" {
		order.CustomerPhone = input.Address.Phone
	}

	result := &SubmitResult{Order: order}

	// The hosted session comes first: if the gateway refuses, no order exists
	if input.Method == domain.PaymentMethodGateway {
		if !s.gateway.Enabled() {
			return nil, &errors.ErrValidation{Message: "payment gateway unavailable", MessageKey: i18n.KeyPaymentSessionFailed}
		}
		session, err := s.gateway.CreateSession(ctx, totals.Total, orderNumber)
		if err != nil {
			s.logger.Error("Gateway session creation failed",
				zap.String("order_number", orderNumber), zap.Error(err))
			return nil, &errors.ErrValidation{Message: "payment session failed", MessageKey: i18n.KeyPaymentSessionFailed}
		}
		order.GatewayToken = &session.Token
		result.RedirectURL = session.RedirectURL
	}

	items := make([]*domain.OrderItem, 0, len(priced))
	for i, line := range priced {
		items = append(items, &domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: fresh[i].ProductID,
			SKU:       line.SKU,
			Name:      line.NameFr,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
	}

	if err := s.repos.Order.CreateWithItems(ctx, order, items); err != nil {
		s.logger.Error("Order creation failed",
			zap.String("order_number", orderNumber), zap.Error(err))
		return nil, err
	}
	result.Items = items

	if input.Method == domain.PaymentMethodBankTransfer {
		result.BankReference = orderNumber
	}

	s.recordEvent(ctx, order.ID, "order_created", map[string]interface{}{
		"order_number":   orderNumber,
		"payment_method": string(input.Method),
		"total":          totals.Total,
	})

	email := ""
	if order.CustomerEmail != nil {
		email = *order.CustomerEmail
	}
	s.mail.Dispatch(mailer.EventOrderConfirmed, mailer.Payload{
		To:           email,
		CustomerName: order.CustomerName,
		OrderNumber:  orderNumber,
		Total:        totals.Total,
	})
	s.mail.Dispatch(mailer.EventNewOrderAdmin, mailer.Payload{
		CustomerName: order.CustomerName,
		OrderNumber:  orderNumber,
		Total:        totals.Total,
	})

	s.logger.Info("Order submitted",
		zap.String("order_number", orderNumber),
		zap.String("payment_method", string(input.Method)),
		zap.Int64("total", totals.Total),
		zap.Bool("wholesale", order.IsWholesale))

	return result, nil
}

// VerifyGatewayPayment checks a hosted session's outcome server-side and
// settles the order accordingly. A failed or unpaid session is recorded but
// never auto-cancels the order; the admin decides.
func (s *OrderService) VerifyGatewayPayment(ctx context.Context, orderNumber string) (bool, error) {
	order, err := s.repos.Order.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return false, err
	}
	if order.PaymentMethod != domain.PaymentMethodGateway || order.GatewayToken == nil {
		return false, &errors.ErrConflict{Message: "order has no gateway session"}
	}
	if order.PaymentStatus == domain.PaymentStatusPaid {
		return true, nil
	}

	paid, err := s.gateway.VerifySession(ctx, *order.GatewayToken)
	if err != nil {
		return false, err
	}

	if !paid {
		if err := s.repos.Order.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusFailed); err != nil {
			return false, err
		}
		s.recordEvent(ctx, order.ID, "payment_failed", map[string]interface{}{"gateway": "paymee"})
		return false, nil
	}

	if err := s.repos.Order.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusPaid); err != nil {
		return false, err
	}
	if order.Status.CanTransitionTo(domain.OrderStatusPaid) {
		if err := s.repos.Order.UpdateStatus(ctx, order.ID, domain.OrderStatusPaid); err != nil {
			return false, err
		}
	}
	s.recordEvent(ctx, order.ID, "payment_verified", map[string]interface{}{"gateway": "paymee"})
	return true, nil
}

// UploadBankProof attaches the customer's transfer proof and moves the order
// to payment_pending; the admin confirms the payment separately.
func (s *OrderService) UploadBankProof(ctx context.Context, orderNumber, proofURL string) (*domain.Order, error) {
	order, err := s.repos.Order.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != domain.PaymentMethodBankTransfer {
		return nil, &errors.ErrConflict{Message: "order is not a bank transfer"}
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusPaymentPending) {
		return nil, &errors.ErrInvalidStateTransition{From: order.Status, To: domain.OrderStatusPaymentPending}
	}

	if err := s.repos.Order.UpdateBankTransferProof(ctx, order.ID, proofURL); err != nil {
		return nil, err
	}
	if err := s.repos.Order.UpdateStatus(ctx, order.ID, domain.OrderStatusPaymentPending); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, order.ID, "bank_proof_uploaded", map[string]interface{}{"proof_url": proofURL})

	order.BankTransferProofURL = &proofURL
	order.Status = domain.OrderStatusPaymentPending
	return order, nil
}

// UpdateStatus applies an admin status change, enforcing the transition
// table, and emails the customer on shipped and cancelled.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus, reason string) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, &errors.ErrValidation{Message: fmt.Sprintf("unknown order status: %s", status)}
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, &errors.ErrInvalidStateTransition{From: order.Status, To: status}
	}

	if err := s.repos.Order.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, orderID, "status_changed", map[string]interface{}{
		"from": string(order.Status),
		"to":   string(status),
	})

	email := ""
	if order.CustomerEmail != nil {
		email = *order.CustomerEmail
	}
	switch status {
	case domain.OrderStatusShipped:
		s.mail.Dispatch(mailer.EventOrderShipped, mailer.Payload{
			To:           email,
			CustomerName: order.CustomerName,
			OrderNumber:  order.OrderNumber,
		})
	case domain.OrderStatusCancelled:
		s.mail.Dispatch(mailer.EventOrderCancelled, mailer.Payload{
			To:           email,
			CustomerName: order.CustomerName,
			OrderNumber:  order.OrderNumber,
			Reason:       reason,
		})
	}

	order.Status = status
	return order, nil
}

// ConfirmPayment marks an order paid after the admin checked the bank
// transfer (or cash) out-of-band.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == domain.PaymentStatusPaid {
		return order, nil
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusPaid) {
		return nil, &errors.ErrInvalidStateTransition{From: order.Status, To: domain.OrderStatusPaid}
	}

	if err := s.repos.Order.UpdatePaymentStatus(ctx, orderID, domain.PaymentStatusPaid); err != nil {
		return nil, err
	}
	if err := s.repos.Order.UpdateStatus(ctx, orderID, domain.OrderStatusPaid); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, orderID, "payment_confirmed", map[string]interface{}{
		"method": string(order.PaymentMethod),
	})

	order.Status = domain.OrderStatusPaid
	order.PaymentStatus = domain.PaymentStatusPaid
	return order, nil
}

// recordEvent appends to the order audit trail; failures are logged only,
// the audit trail never fails a customer action.
func (s *OrderService) recordEvent(ctx context.Context, orderID uuid.UUID, eventType string, data map[string]interface{}) {
	event := &domain.OrderEvent{
		ID:        uuid.New(),
		OrderID:   orderID,
		EventType: eventType,
		EventData: data,
		CreatedAt: time.Now(),
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record order event",
			zap.String("order_id", orderID.String()),
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

// generateOrderNumber builds ORD-YYYYMMDD-XXXXXX with a random hex suffix
func generateOrderNumber() (string, error) {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%s",
		time.Now().Format("20060102"),
		strings.ToUpper(hex.EncodeToString(suffix))), nil
}
