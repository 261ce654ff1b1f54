package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/puntoventa/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// Key prefixes for everything the service keeps in Redis
const (
	idempotencyKeyPrefix = "pos:event:idempotency:"
	sequenceKeyPrefix    = "pos:sequence:"
)

// NewRedisClient connects to Redis and verifies the connection. The client
// is shared by the idempotency store and the sequence counter; the caller
// closes it.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}
