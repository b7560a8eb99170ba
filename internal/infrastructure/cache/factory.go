package cache

import (
	"fmt"

	"github.com/dibaisales/central/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreFactory creates stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	keyPrefix             string
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithKeyPrefix sets the Redis key namespace.
func WithKeyPrefix(prefix string) FactoryOption {
	return func(f *StoreFactory) {
		f.keyPrefix = prefix
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...FactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		keyPrefix:             DefaultKeyPrefix,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is enabled and reachable,
// otherwise an in-memory store if fallback is allowed.
func (f *StoreFactory) CreateStore() (Store, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory cache")
		return NewInMemoryStore(), nil
	}

	store, err := NewRedisStore(RedisConfig{
		Addr:     f.redisConfig.Addr,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.keyPrefix)
	if err == nil {
		f.logger.Info("using Redis cache", zap.String("addr", f.redisConfig.Addr))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory cache; results are not shared across instances",
		zap.Error(err),
	)
	return NewInMemoryStore(), nil
}
