package cache

import (
	"fmt"
	"time"

	"github.com/erp/puntoventa/internal/domain/sequence"
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/erp/puntoventa/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore builds the store selected by event.idempotency_backend.
// The redis backend needs a connected client.
func NewIdempotencyStore(cfg config.EventConfig, client redis.UniversalClient, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.IdempotencyBackend {
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("idempotency backend redis requires a Redis client")
		}
		logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(client, ""), nil
	case "memory", "":
		logger.Warn("Using in-memory idempotency store; redelivered events are only skipped within this process")
		return NewInMemoryIdempotencyStore(time.Minute), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.IdempotencyBackend)
	}
}

// NewCounter builds the sequence counter for the redis and memory backends.
// The database backend returns nil: the transaction scope then draws from
// the sequences table inside each transaction.
func NewCounter(cfg config.SequenceConfig, client redis.UniversalClient, logger *zap.Logger) (sequence.Counter, error) {
	switch cfg.Backend {
	case "database", "":
		return nil, nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("sequence backend redis requires a Redis client")
		}
		logger.Warn("Using Redis sequence counter; numbers drawn by a rolled back transaction are not returned")
		return NewRedisCounter(client, nil), nil
	case "memory":
		logger.Warn("Using in-memory sequence counter; counters restart with the process")
		return NewInMemoryCounter(nil), nil
	default:
		return nil, fmt.Errorf("unknown sequence backend %q", cfg.Backend)
	}
}
