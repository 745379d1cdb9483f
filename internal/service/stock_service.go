package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/repository"
)

// StockResult is the outcome of a stock check
type StockResult struct {
	Valid          bool
	AvailableStock int
	Product        *domain.ProductSnapshot
}

// StockValidator answers whether a requested quantity is satisfiable against
// live inventory. It fails closed: a lookup error, missing product or
// inactive product yields Valid=false with zero stock, so a bad read can
// never admit an unfulfillable line.
type StockValidator struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewStockValidator creates a stock validator
func NewStockValidator(products repository.ProductRepository, logger *zap.Logger) *StockValidator {
	return &StockValidator{
		products: products,
		logger:   logger,
	}
}

// Validate re-fetches the product and checks the requested quantity.
// Called fresh at add-to-cart, quantity update and final submission; stock
// is never trusted from a previous read.
func (v *StockValidator) Validate(ctx context.Context, productID uuid.UUID, requested int) StockResult {
	product, err := v.products.GetByID(ctx, productID)
	if err != nil {
		v.logger.Warn("Stock check failed, treating as unavailable",
			zap.String("product_id", productID.String()), zap.Error(err))
		return StockResult{}
	}

	if !product.IsActive {
		return StockResult{}
	}

	snapshot := product.Snapshot()
	return StockResult{
		Valid:          requested >= 1 && requested <= product.AvailableStock,
		AvailableStock: product.AvailableStock,
		Product:        &snapshot,
	}
}
