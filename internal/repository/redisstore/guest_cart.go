package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
)

// guestCartTTL keeps abandoned anonymous carts from accumulating forever
const guestCartTTL = 30 * 24 * time.Hour

// GuestCartStore persists anonymous carts in a Redis hash keyed by cart
// token, one field per product id. This is the server-side analog of the
// storefront's localStorage cart.
type GuestCartStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewGuestCartStore creates a Redis-backed guest cart store
func NewGuestCartStore(client *redis.Client, logger *zap.Logger) *GuestCartStore {
	return &GuestCartStore{
		client: client,
		logger: logger,
	}
}

func (s *GuestCartStore) GetLines(ctx context.Context, token string) ([]domain.StoredCartLine, error) {
	fields, err := s.client.HGetAll(ctx, cartKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	lines := make([]domain.StoredCartLine, 0, len(fields))
	for field, value := range fields {
		productID, err := uuid.Parse(field)
		if err != nil {
			// Unparseable field: drop it, best-effort cleanup
			s.logger.Warn("Dropping malformed guest cart field", zap.String("field", field))
			s.client.HDel(ctx, cartKey(token), field)
			continue
		}
		quantity, err := strconv.Atoi(value)
		if err != nil || quantity < 1 {
			s.logger.Warn("Dropping malformed guest cart quantity",
				zap.String("product_id", field), zap.String("value", value))
			s.client.HDel(ctx, cartKey(token), field)
			continue
		}
		lines = append(lines, domain.StoredCartLine{ProductID: productID, Quantity: quantity})
	}

	return lines, nil
}

func (s *GuestCartStore) UpsertLine(ctx context.Context, token string, productID uuid.UUID, quantity int) error {
	key := cartKey(token)
	if err := s.client.HSet(ctx, key, productID.String(), quantity).Err(); err != nil {
		return fmt.Errorf("redis hset failed: %w", err)
	}
	if err := s.client.Expire(ctx, key, guestCartTTL).Err(); err != nil {
		s.logger.Warn("Failed to refresh guest cart TTL", zap.Error(err))
	}
	return nil
}

func (s *GuestCartStore) DeleteLine(ctx context.Context, token string, productID uuid.UUID) error {
	if err := s.client.HDel(ctx, cartKey(token), productID.String()).Err(); err != nil {
		return fmt.Errorf("redis hdel failed: %w", err)
	}
	return nil
}

func (s *GuestCartStore) Clear(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, cartKey(token)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func cartKey(token string) string {
	return fmt.Sprintf("guest_cart:%s", token)
}
