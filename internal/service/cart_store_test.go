package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/realtime"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

func testProduct(stock int, retail int64, wholesale *int64) *domain.Product {
	return &domain.Product{
		ID:             uuid.New(),
		SKU:            "SKU-1",
		NameAr:         "منتج",
		NameFr:         "Produit",
		RetailPrice:    retail,
		WholesalePrice: wholesale,
		AvailableStock: stock,
		IsActive:       true,
	}
}

func newTestStore(t *testing.T, products *fakeProducts, backend CartBackend, wholesaleApproved bool) *CartStore {
	t.Helper()
	stock := NewStockValidator(products, zap.NewNop())
	return NewCartStore(backend, stock, realtime.NewMemoryFeed(), wholesaleApproved, zap.NewNop())
}

func TestAddItem_NewLine(t *testing.T) {
	p := testProduct(5, 10000, nil)
	products := newFakeProducts(p)
	backend := newFakeBackend()
	store := newTestStore(t, products, backend, false)

	require.NoError(t, store.AddItem(context.Background(), p.ID, 2))

	snap := store.Snapshot()
	assert.Equal(t, 2, snap.ItemCount)
	assert.Equal(t, int64(20000), snap.Subtotal)
	assert.Equal(t, 2, backend.quantity(p.ID))
}

func TestAddItem_SumsWithExistingLine(t *testing.T) {
	p := testProduct(5, 10000, nil)
	products := newFakeProducts(p)
	backend := newFakeBackend()
	store := newTestStore(t, products, backend, false)

	require.NoError(t, store.AddItem(context.Background(), p.ID, 2))
	require.NoError(t, store.AddItem(context.Background(), p.ID, 3))

	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 5, snap.Lines[0].Quantity)
	assert.Equal(t, 5, backend.quantity(p.ID))
}

func TestAddItem_RejectsOverStockNamingRemaining(t *testing.T) {
	// 2 in the cart, 3 in stock: asking for 2 more can only offer 1
	p := testProduct(3, 10000, nil)
	products := newFakeProducts(p)
	backend := newFakeBackend()
	store := newTestStore(t, products, backend, false)

	require.NoError(t, store.AddItem(context.Background(), p.ID, 2))

	err := store.AddItem(context.Background(), p.ID, 2)
	var stockErr *errors.ErrStockConflict
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 2, stockErr.Requested)

	// Cart unchanged
	snap := store.Snapshot()
	assert.Equal(t, 2, snap.ItemCount)
	assert.Equal(t, 2, backend.quantity(p.ID))
}

func TestAddItem_InactiveProductRejected(t *testing.T) {
	p := testProduct(5, 10000, nil)
	p.IsActive = false
	products := newFakeProducts(p)
	store := newTestStore(t, products, newFakeBackend(), false)

	err := store.AddItem(context.Background(), p.ID, 1)
	var valErr *errors.ErrValidation
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, 0, store.Snapshot().ItemCount)
}

func TestAddItem_RollsBackOnWriteFailure(t *testing.T) {
	p := testProduct(5, 10000, nil)
	products := newFakeProducts(p)
	backend := newFakeBackend()
	store := newTestStore(t, products, backend, false)

	require.NoError(t, store.AddItem(context.Background(), p.ID, 1))

	backend.failWrite = true
	err := store.AddItem(context.Background(), p.ID, 2)
	require.Error(t, err)

	// State restored to before the failed mutation
	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 1, snap.Lines[0].Quantity)
}

func TestUpdateQuantity_ClampsToStock(t *testing.T) {
	p := testProduct(4, 10000, nil)
	products := newFakeProducts(p)
	backend := newFakeBackend()
	store := newTestStore(t, products, backend, false)

	require.NoError(t, store.AddItem(context.Background(), p.ID, 2))

	final, err := store.UpdateQuantity(context.Background(), p.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, final)
	assert.Equal(t, 4, backend.quantity(p.ID))
}

func TestUpdateQuantity_BelowOneRemoves(t *testing.T) {
	p := testProduct(5, 10000, nil)
	products := newFakeProducts(p)
	backend := newFakeBackend()
	store := newTestStore(t, products, backend, false)

	require.NoError(t, store.AddItem(context.Background(), p.ID, 2))

	final, err := store.UpdateQuantity(context.Background(), p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, final)
	assert.Equal(t, 0, store.Snapshot().ItemCount)
	assert.Equal(t, 0, backend.quantity(p.ID))
}

func TestUpdateQuantity_UnknownLine(t *testing.T) {
	p := testProduct(5, 10000, nil)
	store := newTestStore(t, newFakeProducts(p), newFakeBackend(), false)

	_, err := store.UpdateQuantity(context.Background(), p.ID, 2)
	var notFound *errors.ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestRemoveItem_AbsentIsNoop(t *testing.T) {
	p := testProduct(5, 10000, nil)
	store := newTestStore(t, newFakeProducts(p), newFakeBackend(), false)

	assert.NoError(t, store.RemoveItem(context.Background(), p.ID))
}

func TestRemoveItem_RollsBackOnWriteFailure(t *testing.T) {
	p := testProduct(5, 10000, nil)
	products := newFakeProducts(p)
	backend := newFakeBackend()
	store := newTestStore(t, products, backend, false)

	require.NoError(t, store.AddItem(context.Background(), p.ID, 2))

	backend.failWrite = true
	err := store.RemoveItem(context.Background(), p.ID)
	require.Error(t, err)

	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
}

func TestLoad_ClampsAndPersistsOverStockLines(t *testing.T) {
	p := testProduct(10, 10000, nil)
	products := newFakeProducts(p)
	backend := newFakeBackend()
	store := newTestStore(t, products, backend, false)

	require.NoError(t, store.AddItem(context.Background(), p.ID, 8))

	// Stock shrank behind our back
	products.setStock(p.ID, 3)
	require.NoError(t, store.Load(context.Background()))

	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 3, snap.Lines[0].Quantity)
	// Customer-backed carts persist the clamp
	assert.Equal(t, 3, backend.quantity(p.ID))
}

func TestLoad_DropsInactiveAndSoldOut(t *testing.T) {
	active := testProduct(5, 10000, nil)
	inactive := testProduct(5, 10000, nil)
	soldOut := testProduct(5, 10000, nil)
	products := newFakeProducts(active, inactive, soldOut)
	backend := newFakeBackend()
	store := newTestStore(t, products, backend, false)

	require.NoError(t, store.AddItem(context.Background(), active.ID, 1))
	require.NoError(t, store.AddItem(context.Background(), inactive.ID, 1))
	require.NoError(t, store.AddItem(context.Background(), soldOut.ID, 1))

	products.products[inactive.ID].IsActive = false
	products.setStock(soldOut.ID, 0)

	require.NoError(t, store.Load(context.Background()))

	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, active.ID, snap.Lines[0].ProductID)
}

func TestLoad_GuestBackendDoesNotPersistFixups(t *testing.T) {
	p := testProduct(10, 10000, nil)
	products := newFakeProducts(p)
	backend := newFakeBackend()
	backend.fixup = false
	store := newTestStore(t, products, backend, false)

	require.NoError(t, store.AddItem(context.Background(), p.ID, 8))

	products.setStock(p.ID, 3)
	require.NoError(t, store.Load(context.Background()))

	// Clamped in memory, untouched durably
	assert.Equal(t, 3, store.Snapshot().Lines[0].Quantity)
	assert.Equal(t, 8, backend.quantity(p.ID))
}

func TestSnapshot_WholesalePricingTier(t *testing.T) {
	wholesale := int64(7000)
	p := testProduct(50, 10000, &wholesale)
	products := newFakeProducts(p)

	retail := newTestStore(t, products, newFakeBackend(), false)
	require.NoError(t, retail.AddItem(context.Background(), p.ID, 3))
	assert.Equal(t, int64(30000), retail.Snapshot().Subtotal)

	approved := newTestStore(t, products, newFakeBackend(), true)
	require.NoError(t, approved.AddItem(context.Background(), p.ID, 3))
	assert.Equal(t, int64(21000), approved.Snapshot().Subtotal)
}

func TestAwaitChange_TimeoutServesCurrentCart(t *testing.T) {
	p := testProduct(5, 10000, nil)
	store := newTestStore(t, newFakeProducts(p), newFakeBackend(), false)

	require.NoError(t, store.AddItem(context.Background(), p.ID, 2))

	// No signal arrives; the timeout is not an error
	require.NoError(t, store.AwaitChange(context.Background(), 10*time.Millisecond))
	assert.Equal(t, 2, store.Snapshot().ItemCount)
}

func TestAwaitChange_ReloadsOnSignal(t *testing.T) {
	p := testProduct(10, 10000, nil)
	products := newFakeProducts(p)
	backend := newFakeBackend()
	feed := realtime.NewMemoryFeed()
	stock := NewStockValidator(products, zap.NewNop())
	store := NewCartStore(backend, stock, feed, false, zap.NewNop())

	require.NoError(t, store.AddItem(context.Background(), p.ID, 2))

	// Another device writes the durable cart, then the feed signals
	require.NoError(t, backend.SaveLine(context.Background(), p.ID, 5))

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				feed.Publish(context.Background(), backend.FeedKey())
				time.Sleep(time.Millisecond)
			}
		}
	}()

	require.NoError(t, store.AwaitChange(context.Background(), 5*time.Second))

	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 5, snap.Lines[0].Quantity)
}

func TestAwaitChange_StaleSignalReturnsUnchangedCart(t *testing.T) {
	p := testProduct(10, 10000, nil)
	products := newFakeProducts(p)
	backend := newFakeBackend()
	feed := realtime.NewMemoryFeed()
	stock := NewStockValidator(products, zap.NewNop())
	store := NewCartStore(backend, stock, feed, false, zap.NewNop())

	require.NoError(t, store.AddItem(context.Background(), p.ID, 2))

	// Signal with nothing behind it: the reload is harmless
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				feed.Publish(context.Background(), backend.FeedKey())
				time.Sleep(time.Millisecond)
			}
		}
	}()

	require.NoError(t, store.AwaitChange(context.Background(), 5*time.Second))

	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
	assert.Equal(t, int64(20000), snap.Subtotal)
}

func TestAwaitChange_CancelledViewer(t *testing.T) {
	p := testProduct(5, 10000, nil)
	store := newTestStore(t, newFakeProducts(p), newFakeBackend(), false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, store.AwaitChange(ctx, time.Second), context.Canceled)
}

func TestClear_EmptiesCart(t *testing.T) {
	p := testProduct(5, 10000, nil)
	products := newFakeProducts(p)
	backend := newFakeBackend()
	store := newTestStore(t, products, backend, false)

	require.NoError(t, store.AddItem(context.Background(), p.ID, 2))
	require.NoError(t, store.Clear(context.Background()))

	assert.Equal(t, 0, store.Snapshot().ItemCount)
	assert.Equal(t, 0, backend.quantity(p.ID))
}
