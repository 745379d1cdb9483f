package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
)

// ProductRepository defines catalog/inventory data access methods
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	ListActive(ctx context.Context, limit, offset int) ([]*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	UpdateStock(ctx context.Context, id uuid.UUID, availableStock int) error
}

// CustomerRepository defines customer account data access methods
type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	UpdateWholesaleStatus(ctx context.Context, id uuid.UUID, status domain.WholesaleStatus, discountTier int) error
	ListByWholesaleStatus(ctx context.Context, status domain.WholesaleStatus, limit, offset int) ([]*domain.Customer, error)
}

// SessionRepository defines login session data access methods
type SessionRepository interface {
	GetByTokenLookup(ctx context.Context, lookup string) (*domain.Session, error)
	Create(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}

// CartRepository defines authenticated cart data access methods
type CartRepository interface {
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error)
	Create(ctx context.Context, cart *domain.Cart) error
	GetLines(ctx context.Context, cartID uuid.UUID) ([]domain.StoredCartLine, error)
	UpsertLine(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, cartID, productID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}

// GuestCartRepository defines anonymous cart data access, keyed by cart token
type GuestCartRepository interface {
	GetLines(ctx context.Context, token string) ([]domain.StoredCartLine, error)
	UpsertLine(ctx context.Context, token string, productID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, token string, productID uuid.UUID) error
	Clear(ctx context.Context, token string) error
}

// OrderRepository defines order data access methods.
// CreateWithItems persists the order, its frozen line items and the implied
// stock decrements in a single transaction; a stock conflict rolls the whole
// write back.
type OrderRepository interface {
	CreateWithItems(ctx context.Context, order *domain.Order, items []*domain.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)
	ListByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*domain.Order, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error
	UpdateBankTransferProof(ctx context.Context, id uuid.UUID, proofURL string) error
}

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// OrderEventRepository defines order audit event data access methods
type OrderEventRepository interface {
	Create(ctx context.Context, event *domain.OrderEvent) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Product        ProductRepository
	Customer       CustomerRepository
	Session        SessionRepository
	Cart           CartRepository
	GuestCart      GuestCartRepository
	Order          OrderRepository
	IdempotencyKey IdempotencyKeyRepository
	OrderEvent     OrderEventRepository
}
