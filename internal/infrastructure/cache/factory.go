package cache

import (
	"fmt"
	"time"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// CartStoreFactory creates cart stores based on configuration
type CartStoreFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CartStoreFactoryOption is a functional option for configuring the factory
type CartStoreFactoryOption func(*CartStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CartStoreFactoryOption {
	return func(f *CartStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory store
// when Redis is unavailable. Default is true (allow fallback)
func WithInMemoryFallback(allow bool) CartStoreFactoryOption {
	return func(f *CartStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCartStoreFactory creates a new factory
func NewCartStoreFactory(cfg config.RedisConfig, ttl time.Duration, opts ...CartStoreFactoryOption) *CartStoreFactory {
	f := &CartStoreFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true, // Default to allowing fallback
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based cart store
func (f *CartStoreFactory) CreateRedisStore() (cart.CartStore, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	store, err := NewRedisCartStore(redisCfg, f.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis cart store: %w", err)
	}

	return store, nil
}

// CreateInMemoryStore creates an in-memory cart store
// This is suitable for single-instance deployments and testing
// WARNING: In-memory stores do not share state across process instances,
// so shoppers would lose their cart when a load balancer moves them
func (f *CartStoreFactory) CreateInMemoryStore() cart.CartStore {
	return NewInMemoryCartStore(f.ttl)
}

// CreateStore creates a cart store based on whether Redis is available
// It tries to create a Redis store first, and falls back to in-memory if
// Redis is not available and AllowInMemoryFallback is true
func (f *CartStoreFactory) CreateStore() (cart.CartStore, error) {
	// Try Redis first
	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis cart store")
		return store, nil
	}

	// Check if fallback is allowed
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for carts but unavailable: %w", err)
	}

	// Fall back to in-memory with warning
	f.logger.Warn("Redis unavailable, falling back to in-memory cart store. "+
		"Carts will not survive restarts or be shared across instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
