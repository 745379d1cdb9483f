package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/i18n"
	"github.com/oudaybenrhouma/ghalinino-api/internal/pricing"
	"github.com/oudaybenrhouma/ghalinino-api/internal/realtime"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

// CartSnapshot is the derived view of a cart: never stored, recomputed on
// every line change.
type CartSnapshot struct {
	Lines     []domain.CartLine
	ItemCount int
	Subtotal  int64 // millimes, at the viewer's price tier
}

// CartStore holds the canonical cart lines for one viewer and keeps them
// consistent with backend stock truth. Every mutator is optimistic: the
// local change is applied first, then the durable write; a failed write
// restores the pre-mutation state and returns a typed error.
//
// The internal mutex only guards slice integrity. It does not serialize
// overlapping mutations on the same line: callers must await one mutation
// before issuing a dependent one, or the later write wins.
type CartStore struct {
	backend           CartBackend
	stock             *StockValidator
	feed              realtime.Feed
	wholesaleApproved bool
	logger            *zap.Logger

	mu    sync.Mutex
	lines []domain.CartLine
}

// NewCartStore creates a cart store over the given backend.
// Call Load before reading the snapshot.
func NewCartStore(backend CartBackend, stock *StockValidator, feed realtime.Feed, wholesaleApproved bool, logger *zap.Logger) *CartStore {
	return &CartStore{
		backend:           backend,
		stock:             stock,
		feed:              feed,
		wholesaleApproved: wholesaleApproved,
		logger:            logger,
	}
}

// Load replaces in-memory state with the durable source, joined with live
// product data. Lines whose quantity now exceeds stock are clamped; lines
// for inactive or sold-out products are dropped. For the customer cart the
// fixups are written back; the guest cart is left as-is (best effort).
func (s *CartStore) Load(ctx context.Context) error {
	stored, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.Error(err))
		return &errors.ErrValidation{Message: "cart load failed", MessageKey: i18n.KeyCartSyncFailed}
	}

	lines := make([]domain.CartLine, 0, len(stored))
	for _, row := range stored {
		result := s.stock.Validate(ctx, row.ProductID, row.Quantity)
		if result.Product == nil || result.AvailableStock < 1 {
			// Inactive, missing or sold out: drop the line
			if s.backend.FixupOnLoad() {
				if err := s.backend.DeleteLine(ctx, row.ProductID); err != nil {
					s.logger.Warn("Failed to persist dropped cart line",
						zap.String("product_id", row.ProductID.String()), zap.Error(err))
				}
			}
			continue
		}

		quantity := row.Quantity
		if quantity > result.AvailableStock {
			quantity = result.AvailableStock
			if s.backend.FixupOnLoad() {
				if err := s.backend.SaveLine(ctx, row.ProductID, quantity); err != nil {
					s.logger.Warn("Failed to persist clamped cart line",
						zap.String("product_id", row.ProductID.String()), zap.Error(err))
				}
			}
		}

		lines = append(lines, domain.CartLine{
			ProductID: row.ProductID,
			Quantity:  quantity,
			Snapshot:  *result.Product,
		})
	}

	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
	return nil
}

// AddItem validates the summed quantity against live stock and appends or
// grows the line. The error names the quantity actually still available
// when the request cannot be satisfied.
func (s *CartStore) AddItem(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	existing := s.lineQuantity(productID)
	total := existing + quantity

	result := s.stock.Validate(ctx, productID, total)
	if result.Product == nil {
		return &errors.ErrValidation{Message: "product unavailable", MessageKey: i18n.KeyProductUnavailable}
	}
	if !result.Valid {
		remaining := result.AvailableStock - existing
		if remaining < 0 {
			remaining = 0
		}
		return &errors.ErrStockConflict{
			ProductID: productID.String(),
			Requested: quantity,
			Available: remaining,
		}
	}

	return s.optimistic(ctx,
		func(lines []domain.CartLine) []domain.CartLine {
			return setLine(lines, productID, total, *result.Product)
		},
		func(ctx context.Context) error {
			return s.backend.SaveLine(ctx, productID, total)
		},
	)
}

// UpdateQuantity sets a line's quantity, clamping to live stock. It returns
// the resulting quantity so callers can warn when it differs from the
// request. Quantities below one delegate to RemoveItem.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID uuid.UUID, quantity int) (int, error) {
	if quantity < 1 {
		return 0, s.RemoveItem(ctx, productID)
	}

	if s.lineQuantity(productID) == 0 {
		return 0, &errors.ErrNotFound{Resource: "cart_line", ID: productID.String()}
	}

	result := s.stock.Validate(ctx, productID, quantity)
	if result.Product == nil || result.AvailableStock < 1 {
		if err := s.RemoveItem(ctx, productID); err != nil {
			return 0, err
		}
		return 0, &errors.ErrValidation{Message: "product unavailable", MessageKey: i18n.KeyProductUnavailable}
	}

	final := quantity
	if final > result.AvailableStock {
		final = result.AvailableStock
	}

	err := s.optimistic(ctx,
		func(lines []domain.CartLine) []domain.CartLine {
			return setLine(lines, productID, final, *result.Product)
		},
		func(ctx context.Context) error {
			return s.backend.SaveLine(ctx, productID, final)
		},
	)
	if err != nil {
		return s.lineQuantity(productID), err
	}
	return final, nil
}

// RemoveItem removes a line. Removing an absent line is a no-op. The
// optimistic removal rolls back on durable-write failure like every other
// mutator.
func (s *CartStore) RemoveItem(ctx context.Context, productID uuid.UUID) error {
	if s.lineQuantity(productID) == 0 {
		return nil
	}

	return s.optimistic(ctx,
		func(lines []domain.CartLine) []domain.CartLine {
			out := lines[:0]
			for _, line := range lines {
				if line.ProductID != productID {
					out = append(out, line)
				}
			}
			return out
		},
		func(ctx context.Context) error {
			return s.backend.DeleteLine(ctx, productID)
		},
	)
}

// Clear empties the cart locally and durably; used after a successful
// order submission.
func (s *CartStore) Clear(ctx context.Context) error {
	return s.optimistic(ctx,
		func([]domain.CartLine) []domain.CartLine { return nil },
		s.backend.Clear,
	)
}

// Snapshot recomputes the derived cart view at the viewer's price tier
func (s *CartStore) Snapshot() CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := CartSnapshot{Lines: cloneLines(s.lines)}
	for _, line := range s.lines {
		snapshot.ItemCount += line.Quantity
		snapshot.Subtotal += pricing.UnitPrice(line.Snapshot, s.wholesaleApproved) * int64(line.Quantity)
	}
	return snapshot
}

// FeedKey names this cart's change surface
func (s *CartStore) FeedKey() string {
	return s.backend.FeedKey()
}

// AwaitChange blocks until the cart's change surface signals, the timeout
// elapses, or ctx is done, then reloads the cart on a signal. Signals are
// coalesced, so a stale wake-up just reloads an unchanged cart. A timeout
// is not an error: the caller serves the current snapshot. Returns ctx's
// error when the viewer is gone.
func (s *CartStore) AwaitChange(ctx context.Context, timeout time.Duration) error {
	ch, unsubscribe := s.feed.Subscribe(s.backend.FeedKey())
	defer unsubscribe()

	select {
	case <-ch:
		return s.Load(ctx)
	case <-time.After(timeout):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// optimistic snapshots state, applies the mutation, attempts the durable
// write, and restores the snapshot on failure. Implemented once, used by
// every mutator.
func (s *CartStore) optimistic(ctx context.Context, apply func([]domain.CartLine) []domain.CartLine, write func(context.Context) error) error {
	s.mu.Lock()
	before := s.lines
	s.lines = apply(cloneLines(before))
	s.mu.Unlock()

	if err := write(ctx); err != nil {
		s.logger.Warn("Durable cart write failed, rolling back", zap.Error(err))
		s.mu.Lock()
		s.lines = before
		s.mu.Unlock()
		return &errors.ErrValidation{Message: "cart sync failed", MessageKey: i18n.KeyCartSyncFailed}
	}

	s.feed.Publish(ctx, s.backend.FeedKey())
	return nil
}

func (s *CartStore) lineQuantity(productID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.lines {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

func setLine(lines []domain.CartLine, productID uuid.UUID, quantity int, snapshot domain.ProductSnapshot) []domain.CartLine {
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			lines[i].Snapshot = snapshot
			return lines
		}
	}
	return append(lines, domain.CartLine{ProductID: productID, Quantity: quantity, Snapshot: snapshot})
}

func cloneLines(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}
