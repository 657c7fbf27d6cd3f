package cache

import (
	"fmt"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/erp/credit/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SnapshotCacheFactory creates the snapshot cache selected by configuration
type SnapshotCacheFactory struct {
	creditConfig config.CreditConfig
	client       *redis.Client
	logger       *zap.Logger
}

// SnapshotCacheFactoryOption is a functional option for configuring the factory
type SnapshotCacheFactoryOption func(*SnapshotCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SnapshotCacheFactoryOption {
	return func(f *SnapshotCacheFactory) {
		f.logger = logger
	}
}

// WithRedisClient supplies the client used by the redis backend
func WithRedisClient(client *redis.Client) SnapshotCacheFactoryOption {
	return func(f *SnapshotCacheFactory) {
		f.client = client
	}
}

// NewSnapshotCacheFactory creates a new factory
func NewSnapshotCacheFactory(cfg config.CreditConfig, opts ...SnapshotCacheFactoryOption) *SnapshotCacheFactory {
	f := &SnapshotCacheFactory{
		creditConfig: cfg,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the configured cache. The redis backend needs a client;
// there is no silent fallback to memory because instances would then
// disagree on cached usage.
func (f *SnapshotCacheFactory) Create() (credit.SnapshotCache, error) {
	switch f.creditConfig.CacheBackend {
	case config.CacheBackendRedis:
		if f.client == nil {
			return nil, fmt.Errorf("credit cache backend %q requires a Redis client", config.CacheBackendRedis)
		}
		f.logger.Info("using Redis credit snapshot cache", zap.Duration("ttl", f.creditConfig.SnapshotTTL))
		return NewRedisSnapshotCache(f.client, f.creditConfig.SnapshotTTL), nil
	case config.CacheBackendMemory, "":
		f.logger.Info("using in-memory credit snapshot cache", zap.Duration("ttl", f.creditConfig.SnapshotTTL))
		return NewInMemorySnapshotCache(f.creditConfig.SnapshotTTL), nil
	default:
		return nil, fmt.Errorf("unknown credit cache backend %q", f.creditConfig.CacheBackend)
	}
}
