package service

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/mailer"
	"github.com/oudaybenrhouma/ghalinino-api/internal/paymee"
	"github.com/oudaybenrhouma/ghalinino-api/internal/pricing"
	"github.com/oudaybenrhouma/ghalinino-api/internal/repository"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

type orderFixture struct {
	svc      *OrderService
	products *fakeProducts
	orders   *fakeOrders
	events   *fakeEvents
	gateway  *fakeGateway
	mail     *fakeNotifier
}

func newOrderFixture(products ...*domain.Product) *orderFixture {
	fp := newFakeProducts(products...)
	fo := newFakeOrders()
	fe := &fakeEvents{}
	fg := &fakeGateway{}
	fn := &fakeNotifier{}

	repos := &repository.Repositories{
		Product:    fp,
		Order:      fo,
		OrderEvent: fe,
	}
	stock := NewStockValidator(fp, zap.NewNop())

	return &orderFixture{
		svc:      NewOrderService(repos, stock, fg, fn, pricing.DefaultVolumeDiscount(), zap.NewNop()),
		products: fp,
		orders:   fo,
		events:   fe,
		gateway:  fg,
		mail:     fn,
	}
}

func submitInput(p *domain.Product, quantity int, method domain.PaymentMethod) SubmitInput {
	email := "client@example.tn"
	return SubmitInput{
		Identity: CheckoutIdentity{
			Name:  "Amine Trabelsi",
			Phone: "+216 20 123 456",
			Email: &email,
		},
		Address: completeAddress(),
		Method:  method,
		Lines: []domain.CartLine{{
			ProductID: p.ID,
			Quantity:  quantity,
			Snapshot:  p.Snapshot(),
		}},
	}
}

func TestSubmitOrder_CashOnDelivery(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)

	result, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodCashOnDelivery))
	require.NoError(t, err)

	order := result.Order
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{6}$`), order.OrderNumber)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, int64(80000), order.Totals.Subtotal)
	assert.Equal(t, int64(5000), order.Totals.ShippingFee)
	assert.Equal(t, int64(85000), order.Totals.Total)
	assert.Empty(t, result.RedirectURL)

	require.Len(t, result.Items, 1)
	assert.Equal(t, int64(40000), result.Items[0].UnitPrice)
	assert.Equal(t, int64(80000), result.Items[0].LineTotal)

	assert.Equal(t, 1, f.orders.count())
	assert.Contains(t, f.events.types(), "order_created")
	assert.ElementsMatch(t, []string{mailer.EventOrderConfirmed, mailer.EventNewOrderAdmin}, f.mail.dispatched())
}

func TestSubmitOrder_StockShortfallFailsWholeSubmission(t *testing.T) {
	p := testProduct(1, 40000, nil)
	f := newOrderFixture(p)

	_, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodCashOnDelivery))
	var stockErr *errors.ErrStockConflict
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.Available)

	assert.Equal(t, 0, f.orders.count())
	assert.Empty(t, f.mail.dispatched())
}

func TestSubmitOrder_PricesFromFreshRead(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)

	input := submitInput(p, 2, domain.PaymentMethodCashOnDelivery)
	// Tampered cart snapshot: the server must re-read the price
	input.Lines[0].Snapshot.RetailPrice = 1

	result, err := f.svc.SubmitOrder(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, int64(80000), result.Order.Totals.Subtotal)
}

func TestSubmitOrder_WholesaleMinimumEnforced(t *testing.T) {
	wholesale := int64(8000)
	p := testProduct(100, 10000, &wholesale)
	f := newOrderFixture(p)

	customerID := uuid.New()
	input := submitInput(p, 5, domain.PaymentMethodBankTransfer)
	input.Identity.CustomerID = &customerID
	input.Identity.IsWholesale = true
	input.Identity.WholesaleApproved = true

	// 5 * 8000 = 40000, below the 100000 minimum
	_, err := f.svc.SubmitOrder(context.Background(), input)
	var minErr *errors.ErrMinimumOrder
	require.ErrorAs(t, err, &minErr)
	assert.Equal(t, 0, f.orders.count())
}

func TestSubmitOrder_PendingApplicantNotHeldToMinimum(t *testing.T) {
	wholesale := int64(8000)
	p := testProduct(100, 10000, &wholesale)
	f := newOrderFixture(p)

	// Application still pending: retail pricing, no wholesale minimum
	customerID := uuid.New()
	input := submitInput(p, 6, domain.PaymentMethodCashOnDelivery)
	input.Identity.CustomerID = &customerID
	input.Identity.IsWholesale = true
	input.Identity.WholesaleApproved = false

	result, err := f.svc.SubmitOrder(context.Background(), input)
	require.NoError(t, err)

	// Priced at retail, 6 * 10000 = 60000, and the order went through
	assert.Equal(t, int64(60000), result.Order.Totals.Subtotal)
	assert.Equal(t, 1, f.orders.count())
}

func TestSubmitOrder_GatewaySessionBeforePersist(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)
	f.gateway.enabled = true
	f.gateway.createErr = fmt.Errorf("gateway down")

	_, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodGateway))
	require.Error(t, err)

	// Session failed first, so nothing was persisted
	assert.Equal(t, 1, f.gateway.created)
	assert.Equal(t, 0, f.orders.count())
	assert.Empty(t, f.mail.dispatched())
}

func TestSubmitOrder_GatewaySuccess(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)
	f.gateway.enabled = true
	f.gateway.session = &paymee.Session{Token: "tok-123", RedirectURL: "https://gateway.example/pay/tok-123"}

	result, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodGateway))
	require.NoError(t, err)

	// The order stays pending until the payment is verified server-side
	assert.Equal(t, domain.OrderStatusPending, result.Order.Status)
	require.NotNil(t, result.Order.GatewayToken)
	assert.Equal(t, "tok-123", *result.Order.GatewayToken)
	assert.Equal(t, "https://gateway.example/pay/tok-123", result.RedirectURL)
}

func TestSubmitOrder_GatewayDisabled(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)

	_, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodGateway))
	var valErr *errors.ErrValidation
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, 0, f.orders.count())
}

func TestSubmitOrder_BankTransferReference(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)

	result, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodBankTransfer))
	require.NoError(t, err)
	assert.Equal(t, result.Order.OrderNumber, result.BankReference)
}

func TestVerifyGatewayPayment_Paid(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)
	f.gateway.enabled = true
	f.gateway.session = &paymee.Session{Token: "tok-123", RedirectURL: "https://gateway.example/pay"}

	result, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodGateway))
	require.NoError(t, err)

	f.gateway.verifyPaid = true
	paid, err := f.svc.VerifyGatewayPayment(context.Background(), result.Order.OrderNumber)
	require.NoError(t, err)
	assert.True(t, paid)

	order, err := f.orders.GetByID(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Contains(t, f.events.types(), "payment_verified")
}

func TestVerifyGatewayPayment_UnpaidRecordsWithoutCancelling(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)
	f.gateway.enabled = true
	f.gateway.session = &paymee.Session{Token: "tok-123", RedirectURL: "https://gateway.example/pay"}

	result, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodGateway))
	require.NoError(t, err)

	f.gateway.verifyPaid = false
	paid, err := f.svc.VerifyGatewayPayment(context.Background(), result.Order.OrderNumber)
	require.NoError(t, err)
	assert.False(t, paid)

	order, err := f.orders.GetByID(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, order.PaymentStatus)
	// Not auto-cancelled; the admin decides
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestUploadBankProof_MovesToPaymentPending(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)

	result, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodBankTransfer))
	require.NoError(t, err)

	order, err := f.svc.UploadBankProof(context.Background(), result.Order.OrderNumber, "https://cdn.example/proof.jpg")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaymentPending, order.Status)
	assert.Contains(t, f.events.types(), "bank_proof_uploaded")
}

func TestUploadBankProof_WrongMethodRejected(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)

	result, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodCashOnDelivery))
	require.NoError(t, err)

	_, err = f.svc.UploadBankProof(context.Background(), result.Order.OrderNumber, "https://cdn.example/proof.jpg")
	var conflict *errors.ErrConflict
	require.ErrorAs(t, err, &conflict)
}

func TestUpdateStatus_InvalidTransitionRejected(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)

	result, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodCashOnDelivery))
	require.NoError(t, err)

	// pending -> delivered skips the whole fulfilment chain
	_, err = f.svc.UpdateStatus(context.Background(), result.Order.ID, domain.OrderStatusDelivered, "")
	var transErr *errors.ErrInvalidStateTransition
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, domain.OrderStatusPending, transErr.From)
}

func TestUpdateStatus_ShippedSendsEmail(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)

	result, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodCashOnDelivery))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), result.Order.ID, domain.OrderStatusProcessing, "")
	require.NoError(t, err)
	order, err := f.svc.UpdateStatus(context.Background(), result.Order.ID, domain.OrderStatusShipped, "")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusShipped, order.Status)
	assert.Contains(t, f.mail.dispatched(), mailer.EventOrderShipped)
}

func TestUpdateStatus_CancelledSendsEmailWithReason(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)

	result, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodCashOnDelivery))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), result.Order.ID, domain.OrderStatusCancelled, "rupture de stock")
	require.NoError(t, err)
	assert.Contains(t, f.mail.dispatched(), mailer.EventOrderCancelled)
}

func TestConfirmPayment_BankTransfer(t *testing.T) {
	p := testProduct(10, 40000, nil)
	f := newOrderFixture(p)

	result, err := f.svc.SubmitOrder(context.Background(), submitInput(p, 2, domain.PaymentMethodBankTransfer))
	require.NoError(t, err)
	_, err = f.svc.UploadBankProof(context.Background(), result.Order.OrderNumber, "https://cdn.example/proof.jpg")
	require.NoError(t, err)

	order, err := f.svc.ConfirmPayment(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
	assert.Contains(t, f.events.types(), "payment_confirmed")
}
