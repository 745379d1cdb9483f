package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
)

func TestMergeGuestCart_SumsAndClamps(t *testing.T) {
	shared := testProduct(5, 10000, nil)
	guestOnly := testProduct(10, 20000, nil)
	products := newFakeProducts(shared, guestOnly)
	stock := NewStockValidator(products, zap.NewNop())

	customerID := uuid.New()
	carts := newFakeCarts()
	cart := &domain.Cart{CustomerID: customerID}
	require.NoError(t, carts.Create(context.Background(), cart))
	require.NoError(t, carts.UpsertLine(context.Background(), cart.ID, shared.ID, 3))

	guest := newFakeGuestCarts()
	require.NoError(t, guest.UpsertLine(context.Background(), "tok", shared.ID, 4))
	require.NoError(t, guest.UpsertLine(context.Background(), "tok", guestOnly.ID, 2))

	require.NoError(t, MergeGuestCart(context.Background(), guest, "tok", carts, customerID, stock, zap.NewNop()))

	lines, err := carts.GetLines(context.Background(), cart.ID)
	require.NoError(t, err)
	byProduct := make(map[uuid.UUID]int)
	for _, l := range lines {
		byProduct[l.ProductID] = l.Quantity
	}
	// 3 + 4 clamped to the 5 in stock
	assert.Equal(t, 5, byProduct[shared.ID])
	assert.Equal(t, 2, byProduct[guestOnly.ID])

	// Guest key cleared so a reused token starts empty
	guestLines, err := guest.GetLines(context.Background(), "tok")
	require.NoError(t, err)
	assert.Empty(t, guestLines)
}

func TestMergeGuestCart_SkipsUnsellableProducts(t *testing.T) {
	inactive := testProduct(5, 10000, nil)
	inactive.IsActive = false
	products := newFakeProducts(inactive)
	stock := NewStockValidator(products, zap.NewNop())

	customerID := uuid.New()
	carts := newFakeCarts()

	guest := newFakeGuestCarts()
	require.NoError(t, guest.UpsertLine(context.Background(), "tok", inactive.ID, 2))

	require.NoError(t, MergeGuestCart(context.Background(), guest, "tok", carts, customerID, stock, zap.NewNop()))

	cart, err := carts.GetByCustomerID(context.Background(), customerID)
	require.NoError(t, err)
	lines, err := carts.GetLines(context.Background(), cart.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestMergeGuestCart_EmptyGuestIsNoop(t *testing.T) {
	products := newFakeProducts()
	stock := NewStockValidator(products, zap.NewNop())
	carts := newFakeCarts()
	guest := newFakeGuestCarts()

	customerID := uuid.New()
	require.NoError(t, MergeGuestCart(context.Background(), guest, "tok", carts, customerID, stock, zap.NewNop()))

	// No customer cart was created for nothing
	_, err := carts.GetByCustomerID(context.Background(), customerID)
	assert.Error(t, err)
}
