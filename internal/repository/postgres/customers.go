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

type customerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sql.DB, logger *zap.Logger) *customerRepository {
	return &customerRepository{
		db:     db,
		logger: logger,
	}
}

const customerColumns = `
	id, email, password_hash, full_name, phone, is_admin,
	wholesale_status, wholesale_discount_tier, created_at, updated_at
`

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := r.scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "customer", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get customer by ID", zap.Error(err))
		return nil, err
	}

	return customer, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`

	customer, err := r.scanCustomer(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "customer", ID: email}
	}
	if err != nil {
		r.logger.Error("Failed to get customer by email", zap.Error(err))
		return nil, err
	}

	return customer, nil
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (
			id, email, password_hash, full_name, phone, is_admin,
			wholesale_status, wholesale_discount_tier, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = now
	}
	if customer.UpdatedAt.IsZero() {
		customer.UpdatedAt = now
	}
	if customer.Wholesale.Status == "" {
		customer.Wholesale.Status = domain.WholesaleStatusNone
	}

	_, err := r.db.ExecContext(ctx, query,
		customer.ID,
		customer.Email,
		customer.PasswordHash,
		customer.FullName,
		customer.Phone,
		customer.IsAdmin,
		customer.Wholesale.Status,
		customer.Wholesale.DiscountTier,
		customer.CreatedAt,
		customer.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create customer", zap.Error(err))
		return err
	}

	return nil
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	query := `
		UPDATE customers
		SET email = $2, password_hash = $3, full_name = $4, phone = $5,
			is_admin = $6, wholesale_status = $7, wholesale_discount_tier = $8,
			updated_at = $9
		WHERE id = $1
	`

	customer.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		customer.ID,
		customer.Email,
		customer.PasswordHash,
		customer.FullName,
		customer.Phone,
		customer.IsAdmin,
		customer.Wholesale.Status,
		customer.Wholesale.DiscountTier,
		customer.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to update customer", zap.Error(err))
		return err
	}

	return nil
}

func (r *customerRepository) UpdateWholesaleStatus(ctx context.Context, id uuid.UUID, status domain.WholesaleStatus, discountTier int) error {
	query := `
		UPDATE customers
		SET wholesale_status = $2, wholesale_discount_tier = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, discountTier, time.Now())
	if err != nil {
		r.logger.Error("Failed to update wholesale status", zap.Error(err), zap.String("customer_id", id.String()))
		return err
	}

	return nil
}

func (r *customerRepository) ListByWholesaleStatus(ctx context.Context, status domain.WholesaleStatus, limit, offset int) ([]*domain.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE wholesale_status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list customers by wholesale status", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		customer, err := r.scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}

	return customers, rows.Err()
}

func (r *customerRepository) scanCustomer(row rowScanner) (*domain.Customer, error) {
	var customer domain.Customer
	var phone sql.NullString

	err := row.Scan(
		&customer.ID,
		&customer.Email,
		&customer.PasswordHash,
		&customer.FullName,
		&phone,
		&customer.IsAdmin,
		&customer.Wholesale.Status,
		&customer.Wholesale.DiscountTier,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	if phone.Valid {
		customer.Phone = phone.String
	}

	return &customer, nil
}
