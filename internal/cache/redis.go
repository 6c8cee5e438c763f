package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/platewise/mealplan-optimizer/internal/types"
)

// Redis is a Store backed by a shared Redis instance, letting multiple
// replicas reuse each other's solves. Redis faults degrade to cache misses;
// they are logged, never surfaced.
type Redis struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

// NewRedis wraps an existing client. The prefix namespaces keys within a
// shared database.
func NewRedis(client *redis.Client, prefix string, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{client: client, prefix: prefix, log: log}
}

func (c *Redis) key(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

func (c *Redis) Get(ctx context.Context, key string) (*types.MealPlanResponse, bool) {
	payload, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("redis cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var resp types.MealPlanResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		c.log.Warn("redis cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return &resp, true
}

func (c *Redis) Set(ctx context.Context, key string, value *types.MealPlanResponse, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("redis cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(key), payload, ttl).Err(); err != nil {
		c.log.Warn("redis cache write failed", zap.Error(err))
	}
}
