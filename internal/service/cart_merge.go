package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/repository"
)

// MergeGuestCart folds the anonymous cart into the customer's cart at
// sign-in. Quantities for the same product are summed then clamped to live
// stock; lines for products no longer sellable are skipped. The guest key
// is cleared afterwards so a reused token starts empty.
//
// The merge is best effort: a line that fails to write is logged and
// skipped rather than aborting the sign-in.
func MergeGuestCart(ctx context.Context, guest repository.GuestCartRepository, token string, carts repository.CartRepository, customerID uuid.UUID, stock *StockValidator, logger *zap.Logger) error {
	guestLines, err := guest.GetLines(ctx, token)
	if err != nil {
		logger.Warn("Failed to read guest cart for merge",
			zap.String("customer_id", customerID.String()), zap.Error(err))
		return err
	}
	if len(guestLines) == 0 {
		return nil
	}

	remote := &remoteBackend{carts: carts, customerID: customerID}
	existing, err := remote.Load(ctx)
	if err != nil {
		return err
	}

	existingQty := make(map[uuid.UUID]int, len(existing))
	for _, line := range existing {
		existingQty[line.ProductID] = line.Quantity
	}

	for _, line := range guestLines {
		total := existingQty[line.ProductID] + line.Quantity

		result := stock.Validate(ctx, line.ProductID, total)
		if result.Product == nil || result.AvailableStock < 1 {
			logger.Info("Skipping unsellable product during cart merge",
				zap.String("product_id", line.ProductID.String()))
			continue
		}
		if total > result.AvailableStock {
			total = result.AvailableStock
		}

		if err := remote.SaveLine(ctx, line.ProductID, total); err != nil {
			logger.Warn("Failed to merge cart line",
				zap.String("product_id", line.ProductID.String()), zap.Error(err))
		}
	}

	if err := guest.Clear(ctx, token); err != nil {
		logger.Warn("Failed to clear guest cart after merge",
			zap.String("customer_id", customerID.String()), zap.Error(err))
	}
	return nil
}
