package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/realtime"
	"github.com/oudaybenrhouma/ghalinino-api/internal/repository"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

// CartBackend is the durable side of a cart. Two implementations exist:
// one over the customer's Postgres cart rows and one over the anonymous
// Redis cart. The store above never branches on identity type.
type CartBackend interface {
	Load(ctx context.Context) ([]domain.StoredCartLine, error)
	SaveLine(ctx context.Context, productID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, productID uuid.UUID) error
	Clear(ctx context.Context) error

	// FeedKey names this cart's change surface for realtime reload signals
	FeedKey() string

	// FixupOnLoad reports whether load-time clamps and drops should be
	// written back. True for the customer cart; the guest cart is
	// best-effort and left as-is.
	FixupOnLoad() bool
}

// remoteBackend stores lines in the customer's backend cart, lazily
// creating the cart record on first use.
type remoteBackend struct {
	carts      repository.CartRepository
	customerID uuid.UUID
	cartID     uuid.UUID // resolved lazily
}

// NewRemoteCartBackend creates the Postgres-backed cart backend for an
// authenticated customer.
func NewRemoteCartBackend(carts repository.CartRepository, customerID uuid.UUID) CartBackend {
	return &remoteBackend{
		carts:      carts,
		customerID: customerID,
	}
}

func (b *remoteBackend) resolveCart(ctx context.Context) (uuid.UUID, error) {
	if b.cartID != uuid.Nil {
		return b.cartID, nil
	}

	cart, err := b.carts.GetByCustomerID(ctx, b.customerID)
	if err != nil {
		if _, isNotFound := err.(*errors.ErrNotFound); !isNotFound {
			return uuid.Nil, err
		}
		cart = &domain.Cart{CustomerID: b.customerID}
		if err := b.carts.Create(ctx, cart); err != nil {
			return uuid.Nil, err
		}
	}

	b.cartID = cart.ID
	return b.cartID, nil
}

func (b *remoteBackend) Load(ctx context.Context) ([]domain.StoredCartLine, error) {
	cartID, err := b.resolveCart(ctx)
	if err != nil {
		return nil, err
	}
	return b.carts.GetLines(ctx, cartID)
}

func (b *remoteBackend) SaveLine(ctx context.Context, productID uuid.UUID, quantity int) error {
	cartID, err := b.resolveCart(ctx)
	if err != nil {
		return err
	}
	return b.carts.UpsertLine(ctx, cartID, productID, quantity)
}

func (b *remoteBackend) DeleteLine(ctx context.Context, productID uuid.UUID) error {
	cartID, err := b.resolveCart(ctx)
	if err != nil {
		return err
	}
	return b.carts.DeleteLine(ctx, cartID, productID)
}

func (b *remoteBackend) Clear(ctx context.Context) error {
	cartID, err := b.resolveCart(ctx)
	if err != nil {
		return err
	}
	return b.carts.Clear(ctx, cartID)
}

func (b *remoteBackend) FeedKey() string {
	return realtime.CartKey("customer:" + b.customerID.String())
}

func (b *remoteBackend) FixupOnLoad() bool { return true }

// guestBackend stores lines in the anonymous Redis cart
type guestBackend struct {
	store repository.GuestCartRepository
	token string
}

// NewGuestCartBackend creates the Redis-backed cart backend for an
// anonymous viewer identified by a cart token.
func NewGuestCartBackend(store repository.GuestCartRepository, token string) CartBackend {
	return &guestBackend{
		store: store,
		token: token,
	}
}

func (b *guestBackend) Load(ctx context.Context) ([]domain.StoredCartLine, error) {
	return b.store.GetLines(ctx, b.token)
}

func (b *guestBackend) SaveLine(ctx context.Context, productID uuid.UUID, quantity int) error {
	return b.store.UpsertLine(ctx, b.token, productID, quantity)
}

func (b *guestBackend) DeleteLine(ctx context.Context, productID uuid.UUID) error {
	return b.store.DeleteLine(ctx, b.token, productID)
}

func (b *guestBackend) Clear(ctx context.Context) error {
	return b.store.Clear(ctx, b.token)
}

func (b *guestBackend) FeedKey() string {
	return realtime.CartKey("guest:" + b.token)
}

func (b *guestBackend) FixupOnLoad() bool { return false }
