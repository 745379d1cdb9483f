package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `
	id, order_number, customer_id, customer_name, customer_phone, customer_email,
	status, payment_status, payment_method, is_wholesale,
	subtotal, shipping_fee, discount, total,
	shipping_address, bank_transfer_proof_url, gateway_token,
	created_at, updated_at
`

// CreateWithItems persists the order, its line items and the implied stock
// decrements in one transaction. A product whose live stock no longer covers
// its line quantity aborts the whole write with ErrStockConflict, so no
// partial order is ever visible.
func (r *orderRepository) CreateWithItems(ctx context.Context, order *domain.Order, items []*domain.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin order transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return err
	}

	orderQuery := `
		INSERT INTO orders (
			id, order_number, customer_id, customer_name, customer_phone, customer_email,
			status, payment_status, payment_method, is_wholesale,
			subtotal, shipping_fee, discount, total,
			shipping_address, bank_transfer_proof_url, gateway_token,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err = tx.ExecContext(ctx, orderQuery,
		order.ID,
		order.OrderNumber,
		order.CustomerID,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerEmail,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.IsWholesale,
		order.Totals.Subtotal,
		order.Totals.ShippingFee,
		order.Totals.Discount,
		order.Totals.Total,
		addressJSON,
		order.BankTransferProofURL,
		order.GatewayToken,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert order", zap.Error(err))
		return err
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, sku, name, unit_price, quantity, line_total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	// Conditional decrement: zero rows affected means stock moved under us
	stockQuery := `
		UPDATE products
		SET available_stock = available_stock - $2, updated_at = $3
		WHERE id = $1 AND available_stock >= $2
	`

	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}

		_, err = tx.ExecContext(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.SKU,
			item.Name,
			item.UnitPrice,
			item.Quantity,
			item.LineTotal,
			item.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to insert order item", zap.Error(err), zap.String("sku", item.SKU))
			return err
		}

		res, err := tx.ExecContext(ctx, stockQuery, item.ProductID, item.Quantity, now)
		if err != nil {
			r.logger.Error("Failed to decrement stock", zap.Error(err), zap.String("product_id", item.ProductID.String()))
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			r.logger.Warn("Stock conflict during order creation",
				zap.String("product_id", item.ProductID.String()),
				zap.Int("requested", item.Quantity))
			return &errors.ErrStockConflict{
				ProductID: item.ProductID.String(),
				Requested: item.Quantity,
			}
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit order transaction", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	if orderNumber == "" {
		return nil, &errors.ErrNotFound{Resource: "order", ID: "order_number empty"}
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, orderNumber))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: orderNumber}
	}
	if err != nil {
		r.logger.Error("Failed to get order by order number", zap.Error(err), zap.String("order_number", orderNumber))
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, sku, name, unit_price, quantity, line_total, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to get order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.SKU,
			&item.Name,
			&item.UnitPrice,
			&item.Quantity,
			&item.LineTotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *orderRepository) ListByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.listOrders(ctx, query, customerID, limit, offset)
}

func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	return r.listOrders(ctx, query, limit, offset)
}

func (r *orderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.listOrders(ctx, query, status, limit, offset)
}

func (r *orderRepository) listOrders(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	query := `
		UPDATE orders
		SET payment_status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update payment status", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) UpdateBankTransferProof(ctx context.Context, id uuid.UUID, proofURL string) error {
	query := `
		UPDATE orders
		SET bank_transfer_proof_url = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, proofURL, time.Now())
	if err != nil {
		r.logger.Error("Failed to update bank transfer proof", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var customerID sql.NullString
	var customerEmail sql.NullString
	var addressJSON []byte
	var proofURL sql.NullString
	var gatewayToken sql.NullString

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&customerID,
		&order.CustomerName,
		&order.CustomerPhone,
		&customerEmail,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentMethod,
		&order.IsWholesale,
		&order.Totals.Subtotal,
		&order.Totals.ShippingFee,
		&order.Totals.Discount,
		&order.Totals.Total,
		&addressJSON,
		&proofURL,
		&gatewayToken,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	if customerID.Valid {
		id, err := uuid.Parse(customerID.String)
		if err != nil {
			return nil, err
		}
		order.CustomerID = &id
	}
	if customerEmail.Valid {
		order.CustomerEmail = &customerEmail.String
	}
	if proofURL.Valid {
		order.BankTransferProofURL = &proofURL.String
	}
	if gatewayToken.Valid {
		order.GatewayToken = &gatewayToken.String
	}

	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return nil, err
	}

	return &order, nil
}
