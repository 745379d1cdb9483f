package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/mailer"
	"github.com/oudaybenrhouma/ghalinino-api/internal/paymee"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

// fakeProducts is an in-memory ProductRepository covering what the service
// layer reads; write methods are unused here.
type fakeProducts struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
	failGet  bool
}

func newFakeProducts(products ...*domain.Product) *fakeProducts {
	m := make(map[uuid.UUID]*domain.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &fakeProducts{products: m}
}

func (f *fakeProducts) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, fmt.Errorf("db down")
	}
	p, ok := f.products[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) setStock(id uuid.UUID, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[id].AvailableStock = stock
}

func (f *fakeProducts) GetBySKU(context.Context, string) (*domain.Product, error) {
	return nil, &errors.ErrNotFound{Resource: "product"}
}
func (f *fakeProducts) ListActive(context.Context, int, int) ([]*domain.Product, error) {
	return nil, nil
}
func (f *fakeProducts) List(context.Context, int, int) ([]*domain.Product, error) { return nil, nil }

func (f *fakeProducts) Create(context.Context, *domain.Product) error { return nil }

func (f *fakeProducts) Update(context.Context, *domain.Product) error { return nil }

func (f *fakeProducts) UpdateStock(context.Context, uuid.UUID, int) error { return nil }

// fakeBackend is an in-memory CartBackend with switchable write failures
type fakeBackend struct {
	mu        sync.Mutex
	lines     map[uuid.UUID]int
	failWrite bool
	fixup     bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{lines: make(map[uuid.UUID]int), fixup: true}
}

func (b *fakeBackend) Load(context.Context) ([]domain.StoredCartLine, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.StoredCartLine, 0, len(b.lines))
	for id, qty := range b.lines {
		out = append(out, domain.StoredCartLine{ProductID: id, Quantity: qty})
	}
	return out, nil
}

func (b *fakeBackend) SaveLine(_ context.Context, productID uuid.UUID, quantity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWrite {
		return fmt.Errorf("write failed")
	}
	b.lines[productID] = quantity
	return nil
}

func (b *fakeBackend) DeleteLine(_ context.Context, productID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWrite {
		return fmt.Errorf("write failed")
	}
	delete(b.lines, productID)
	return nil
}

func (b *fakeBackend) Clear(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWrite {
		return fmt.Errorf("write failed")
	}
	b.lines = make(map[uuid.UUID]int)
	return nil
}

func (b *fakeBackend) FeedKey() string   { return "cart:test" }
func (b *fakeBackend) FixupOnLoad() bool { return b.fixup }

func (b *fakeBackend) quantity(id uuid.UUID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lines[id]
}

// fakeOrders records CreateWithItems calls and serves reads back
type fakeOrders struct {
	mu         sync.Mutex
	created    []*domain.Order
	items      map[uuid.UUID][]*domain.OrderItem
	statuses   map[uuid.UUID]domain.OrderStatus
	payments   map[uuid.UUID]domain.PaymentStatus
	proofs     map[uuid.UUID]string
	failCreate error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		items:    make(map[uuid.UUID][]*domain.OrderItem),
		statuses: make(map[uuid.UUID]domain.OrderStatus),
		payments: make(map[uuid.UUID]domain.PaymentStatus),
		proofs:   make(map[uuid.UUID]string),
	}
}

func (f *fakeOrders) CreateWithItems(_ context.Context, order *domain.Order, items []*domain.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	f.created = append(f.created, order)
	f.items[order.ID] = items
	f.statuses[order.ID] = order.Status
	f.payments[order.ID] = order.PaymentStatus
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.created {
		if o.ID == id {
			cp := *o
			cp.Status = f.statuses[id]
			cp.PaymentStatus = f.payments[id]
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
}

func (f *fakeOrders) GetByOrderNumber(_ context.Context, orderNumber string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.created {
		if o.OrderNumber == orderNumber {
			cp := *o
			cp.Status = f.statuses[o.ID]
			cp.PaymentStatus = f.payments[o.ID]
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: orderNumber}
}

func (f *fakeOrders) GetItems(_ context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[orderID], nil
}

func (f *fakeOrders) ListByCustomerID(context.Context, uuid.UUID, int, int) ([]*domain.Order, error) {
	return nil, nil
}
func (f *fakeOrders) List(context.Context, int, int) ([]*domain.Order, error) { return nil, nil }
func (f *fakeOrders) ListByStatus(context.Context, domain.OrderStatus, int, int) ([]*domain.Order, error) {
	return nil, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	return nil
}

func (f *fakeOrders) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[id] = status
	return nil
}

func (f *fakeOrders) UpdateBankTransferProof(_ context.Context, id uuid.UUID, proofURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proofs[id] = proofURL
	return nil
}


func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

// fakeEvents is an in-memory OrderEventRepository
type fakeEvents struct {
	mu     sync.Mutex
	events []*domain.OrderEvent
}

func (f *fakeEvents) Create(_ context.Context, event *domain.OrderEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEvents) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.OrderEvent
	for _, e := range f.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}

// fakeGateway is a scriptable PaymentGateway
type fakeGateway struct {
	mu         sync.Mutex
	enabled    bool
	session    *paymee.Session
	createErr  error
	verifyPaid bool
	verifyErr  error
	created    int
}

func (g *fakeGateway) Enabled() bool { return g.enabled }

func (g *fakeGateway) CreateSession(context.Context, int64, string) (*paymee.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created++
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.session, nil
}

func (g *fakeGateway) VerifySession(context.Context, string) (bool, error) {
	return g.verifyPaid, g.verifyErr
}

// fakeNotifier records dispatched events synchronously
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
	tos    []string
}

func (n *fakeNotifier) Dispatch(event string, payload mailer.Payload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	n.tos = append(n.tos, payload.To)
}

func (n *fakeNotifier) dispatched() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

// fakeGuestCarts is an in-memory GuestCartRepository
type fakeGuestCarts struct {
	mu    sync.Mutex
	carts map[string]map[uuid.UUID]int
}

func newFakeGuestCarts() *fakeGuestCarts {
	return &fakeGuestCarts{carts: make(map[string]map[uuid.UUID]int)}
}

func (f *fakeGuestCarts) GetLines(_ context.Context, token string) ([]domain.StoredCartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.StoredCartLine
	for id, qty := range f.carts[token] {
		out = append(out, domain.StoredCartLine{ProductID: id, Quantity: qty})
	}
	return out, nil
}

func (f *fakeGuestCarts) UpsertLine(_ context.Context, token string, productID uuid.UUID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.carts[token] == nil {
		f.carts[token] = make(map[uuid.UUID]int)
	}
	f.carts[token][productID] = quantity
	return nil
}

func (f *fakeGuestCarts) DeleteLine(_ context.Context, token string, productID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts[token], productID)
	return nil
}

func (f *fakeGuestCarts) Clear(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, token)
	return nil
}

// fakeCarts is an in-memory CartRepository
type fakeCarts struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*domain.Cart // by customer id
	lines map[uuid.UUID]map[uuid.UUID]int
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{
		carts: make(map[uuid.UUID]*domain.Cart),
		lines: make(map[uuid.UUID]map[uuid.UUID]int),
	}
}

func (f *fakeCarts) GetByCustomerID(_ context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[customerID]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "cart", ID: customerID.String()}
	}
	return cart, nil
}

func (f *fakeCarts) Create(_ context.Context, cart *domain.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	f.carts[cart.CustomerID] = cart
	f.lines[cart.ID] = make(map[uuid.UUID]int)
	return nil
}

func (f *fakeCarts) GetLines(_ context.Context, cartID uuid.UUID) ([]domain.StoredCartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.StoredCartLine
	for id, qty := range f.lines[cartID] {
		out = append(out, domain.StoredCartLine{ProductID: id, Quantity: qty})
	}
	return out, nil
}

func (f *fakeCarts) UpsertLine(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lines[cartID] == nil {
		f.lines[cartID] = make(map[uuid.UUID]int)
	}
	f.lines[cartID][productID] = quantity
	return nil
}

func (f *fakeCarts) DeleteLine(_ context.Context, cartID, productID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lines[cartID], productID)
	return nil
}

func (f *fakeCarts) Clear(_ context.Context, cartID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines[cartID] = make(map[uuid.UUID]int)
	return nil
}

// fakeCustomers is an in-memory CustomerRepository
type fakeCustomers struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*domain.Customer
}

func newFakeCustomers(customers ...*domain.Customer) *fakeCustomers {
	m := make(map[uuid.UUID]*domain.Customer, len(customers))
	for _, c := range customers {
		m[c.ID] = c
	}
	return &fakeCustomers{customers: m}
}

func (f *fakeCustomers) GetByID(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "customer", ID: id.String()}
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "customer", ID: email}
}

func (f *fakeCustomers) Create(_ context.Context, customer *domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers[customer.ID] = customer
	return nil
}

func (f *fakeCustomers) Update(_ context.Context, customer *domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers[customer.ID] = customer
	return nil
}

func (f *fakeCustomers) UpdateWholesaleStatus(_ context.Context, id uuid.UUID, status domain.WholesaleStatus, discountTier int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "customer", ID: id.String()}
	}
	c.Wholesale.Status = status
	c.Wholesale.DiscountTier = discountTier
	return nil
}

func (f *fakeCustomers) ListByWholesaleStatus(_ context.Context, status domain.WholesaleStatus, _, _ int) ([]*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Customer
	for _, c := range f.customers {
		if c.Wholesale.Status == status {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeSessions is an in-memory SessionRepository
type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session // by token lookup
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]*domain.Session)}
}

func (f *fakeSessions) GetByTokenLookup(_ context.Context, lookup string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[lookup]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "session"}
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) Create(_ context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.TokenLookup] = session
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for lookup, s := range f.sessions {
		if s.ID == id {
			delete(f.sessions, lookup)
		}
	}
	return nil
}

func (f *fakeSessions) DeleteExpired(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for lookup, s := range f.sessions {
		if time.Now().After(s.ExpiresAt) {
			delete(f.sessions, lookup)
		}
	}
	return nil
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}
