package orders

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	redisTimeout    = 2 * time.Second
	resolveCacheTTL = 4 * time.Hour
	resolveKeyPfx   = "order-db-id:"
)

// RedisAPI is the subset of the redis client used by CachedResolver.
type RedisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// IDResolver resolves provider order ids to internal ids.
type IDResolver interface {
	ResolveDBID(ctx context.Context, orderID string) (string, error)
}

// CachedResolver is a read-through redis cache in front of another resolver.
// Redis failures degrade to the backing resolver.
type CachedResolver struct {
	cache   RedisAPI
	backend IDResolver
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCachedResolver wraps backend with a redis cache.
func NewCachedResolver(cache RedisAPI, backend IDResolver, logger *zap.Logger) *CachedResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedResolver{
		cache:   cache,
		backend: backend,
		ttl:     resolveCacheTTL,
		logger:  logger,
	}
}

// ResolveDBID implements IDResolver.
func (r *CachedResolver) ResolveDBID(ctx context.Context, orderID string) (string, error) {
	key := resolveKeyPfx + orderID

	getCtx, cancel := context.WithTimeout(ctx, redisTimeout)
	val, err := r.cache.Get(getCtx, key).Result()
	cancel()
	switch {
	case err == nil && val != "":
		return val, nil
	case err != nil && err != redis.Nil:
		r.logger.Warn("order id cache read failed", zap.String("order_id", orderID), zap.Error(err))
	}

	id, err := r.backend.ResolveDBID(ctx, orderID)
	if err != nil {
		return "", err
	}

	setCtx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	if err := r.cache.Set(setCtx, key, id, r.ttl).Err(); err != nil {
		r.logger.Warn("order id cache write failed", zap.String("order_id", orderID), zap.Error(err))
	}
	return id, nil
}
