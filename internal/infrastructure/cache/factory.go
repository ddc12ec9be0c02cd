package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/stocker/inventory/internal/domain/shared"
	"github.com/stocker/inventory/internal/infrastructure/config"
)

// storeOptions configures NewIdempotencyStore.
type storeOptions struct {
	logger           *zap.Logger
	inMemoryFallback bool
}

// StoreOption is a functional option for NewIdempotencyStore.
type StoreOption func(*storeOptions)

// WithLogger sets the logger used for fallback warnings.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// the in-memory store. In-memory dedup state is per process: replayed
// events can slip through in a multi-instance deployment, though the
// reference lookup on reservations still catches them.
func WithInMemoryFallback(allow bool) StoreOption {
	return func(o *storeOptions) {
		o.inMemoryFallback = allow
	}
}

// NewIdempotencyStore builds the dedup store the event consumers use to
// skip redelivered events. Redis is preferred; the in-memory fallback is
// opt-in via WithInMemoryFallback.
func NewIdempotencyStore(cfg config.RedisConfig, opts ...StoreOption) (shared.IdempotencyStore, error) {
	options := storeOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&options)
	}

	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err == nil {
		options.logger.Info("using Redis idempotency store")
		return store, nil
	}

	if !options.inMemoryFallback {
		return nil, fmt.Errorf("Redis required for idempotency but unavailable: %w", err)
	}

	options.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
		"This may cause duplicate event processing in distributed deployments.",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
