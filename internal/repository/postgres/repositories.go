package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/repository"
)

// NewRepositories creates the Postgres-backed set of repositories.
// The guest cart repository lives in redisstore and is attached by the caller.
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Product:        NewProductRepository(db, logger),
		Customer:       NewCustomerRepository(db, logger),
		Session:        NewSessionRepository(db, logger),
		Cart:           NewCartRepository(db, logger),
		Order:          NewOrderRepository(db, logger),
		IdempotencyKey: NewIdempotencyKeyRepository(db, logger),
		OrderEvent:     NewOrderEventRepository(db, logger),
	}
}
