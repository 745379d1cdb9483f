package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

type cartRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *sql.DB, logger *zap.Logger) *cartRepository {
	return &cartRepository{
		db:     db,
		logger: logger,
	}
}

func (r *cartRepository) GetByCustomerID(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	query := `
		SELECT id, customer_id, created_at, updated_at
		FROM carts
		WHERE customer_id = $1
	`

	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, query, customerID).Scan(
		&cart.ID,
		&cart.CustomerID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "cart", ID: customerID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get cart by customer ID", zap.Error(err))
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	query := `
		INSERT INTO carts (id, customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	now := time.Now()
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	if cart.UpdatedAt.IsZero() {
		cart.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query, cart.ID, cart.CustomerID, cart.CreatedAt, cart.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create cart", zap.Error(err))
		return err
	}

	return nil
}

func (r *cartRepository) GetLines(ctx context.Context, cartID uuid.UUID) ([]domain.StoredCartLine, error) {
	query := `
		SELECT product_id, quantity
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		r.logger.Error("Failed to get cart lines", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []domain.StoredCartLine
	for rows.Next() {
		var line domain.StoredCartLine
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func (r *cartRepository) UpsertLine(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	query := `
		INSERT INTO cart_lines (cart_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, cartID, productID, quantity, time.Now())
	if err != nil {
		r.logger.Error("Failed to upsert cart line", zap.Error(err),
			zap.String("cart_id", cartID.String()),
			zap.String("product_id", productID.String()))
		return err
	}

	return nil
}

func (r *cartRepository) DeleteLine(ctx context.Context, cartID, productID uuid.UUID) error {
	query := `DELETE FROM cart_lines WHERE cart_id = $1 AND product_id = $2`

	_, err := r.db.ExecContext(ctx, query, cartID, productID)
	if err != nil {
		r.logger.Error("Failed to delete cart line", zap.Error(err))
		return err
	}

	return nil
}

func (r *cartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	query := `DELETE FROM cart_lines WHERE cart_id = $1`

	_, err := r.db.ExecContext(ctx, query, cartID)
	if err != nil {
		r.logger.Error("Failed to clear cart", zap.Error(err))
		return err
	}

	return nil
}
