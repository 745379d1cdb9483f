package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisFeed broadcasts change signals across instances via Redis pub/sub
type RedisFeed struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisFeed creates a Redis-backed feed
func NewRedisFeed(client *redis.Client, logger *zap.Logger) *RedisFeed {
	return &RedisFeed{
		client: client,
		logger: logger,
	}
}

func (f *RedisFeed) Publish(ctx context.Context, key string) {
	if err := f.client.Publish(ctx, channel(key), "1").Err(); err != nil {
		// Change signals are best-effort; subscribers reload on the next one
		f.logger.Warn("Failed to publish change signal", zap.String("key", key), zap.Error(err))
	}
}

func (f *RedisFeed) Subscribe(key string) (<-chan struct{}, func()) {
	pubsub := f.client.Subscribe(context.Background(), channel(key))
	out := make(chan struct{}, 1)

	go func() {
		for range pubsub.Channel() {
			select {
			case out <- struct{}{}:
			default:
			}
		}
		close(out)
	}()

	unsubscribe := func() {
		if err := pubsub.Close(); err != nil {
			f.logger.Warn("Failed to close pubsub subscription", zap.String("key", key), zap.Error(err))
		}
	}

	return out, unsubscribe
}

func channel(key string) string {
	return "changes:" + key
}
