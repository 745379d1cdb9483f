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

type productRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) *productRepository {
	return &productRepository{
		db:     db,
		logger: logger,
	}
}

const productColumns = `
	id, sku, name_ar, name_fr, description_ar, description_fr,
	retail_price, wholesale_price, compare_at_price, available_stock,
	wholesale_min_qty, image_url, is_active, created_at, updated_at
`

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := r.scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get product by ID", zap.Error(err), zap.String("product_id", id.String()))
		return nil, err
	}

	return product, nil
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`

	product, err := r.scanProduct(r.db.QueryRowContext(ctx, query, sku))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: sku}
	}
	if err != nil {
		r.logger.Error("Failed to get product by SKU", zap.Error(err), zap.String("sku", sku))
		return nil, err
	}

	return product, nil
}

func (r *productRepository) ListActive(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = TRUE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	return r.list(ctx, query, limit, offset)
}

func (r *productRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	return r.list(ctx, query, limit, offset)
}

func (r *productRepository) list(ctx context.Context, query string, limit, offset int) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (
			id, sku, name_ar, name_fr, description_ar, description_fr,
			retail_price, wholesale_price, compare_at_price, available_stock,
			wholesale_min_qty, image_url, is_active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	now := time.Now()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.SKU,
		product.NameAr,
		product.NameFr,
		product.DescriptionAr,
		product.DescriptionFr,
		product.RetailPrice,
		product.WholesalePrice,
		product.CompareAtPrice,
		product.AvailableStock,
		product.WholesaleMinQty,
		product.ImageURL,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create product", zap.Error(err))
		return err
	}

	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET sku = $2, name_ar = $3, name_fr = $4, description_ar = $5,
			description_fr = $6, retail_price = $7, wholesale_price = $8,
			compare_at_price = $9, available_stock = $10, wholesale_min_qty = $11,
			image_url = $12, is_active = $13, updated_at = $14
		WHERE id = $1
	`

	product.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.SKU,
		product.NameAr,
		product.NameFr,
		product.DescriptionAr,
		product.DescriptionFr,
		product.RetailPrice,
		product.WholesalePrice,
		product.CompareAtPrice,
		product.AvailableStock,
		product.WholesaleMinQty,
		product.ImageURL,
		product.IsActive,
		product.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to update product", zap.Error(err))
		return err
	}

	return nil
}

func (r *productRepository) UpdateStock(ctx context.Context, id uuid.UUID, availableStock int) error {
	query := `
		UPDATE products
		SET available_stock = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, availableStock, time.Now())
	if err != nil {
		r.logger.Error("Failed to update product stock", zap.Error(err), zap.String("product_id", id.String()))
		return err
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *productRepository) scanProduct(row rowScanner) (*domain.Product, error) {
	var product domain.Product
	var descriptionAr sql.NullString
	var descriptionFr sql.NullString
	var wholesalePrice sql.NullInt64
	var compareAtPrice sql.NullInt64
	var imageURL sql.NullString

	err := row.Scan(
		&product.ID,
		&product.SKU,
		&product.NameAr,
		&product.NameFr,
		&descriptionAr,
		&descriptionFr,
		&product.RetailPrice,
		&wholesalePrice,
		&compareAtPrice,
		&product.AvailableStock,
		&product.WholesaleMinQty,
		&imageURL,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	if descriptionAr.Valid {
		product.DescriptionAr = &descriptionAr.String
	}
	if descriptionFr.Valid {
		product.DescriptionFr = &descriptionFr.String
	}
	if wholesalePrice.Valid {
		product.WholesalePrice = &wholesalePrice.Int64
	}
	if compareAtPrice.Valid {
		product.CompareAtPrice = &compareAtPrice.Int64
	}
	if imageURL.Valid {
		product.ImageURL = &imageURL.String
	}

	return &product, nil
}
