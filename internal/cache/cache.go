// Package cache memoizes interpreted optimization results keyed by model
// hash. Results are idempotent for a given hash, so a stale read can never
// return a wrong answer, only a recomputation.
package cache

import (
	"context"
	"time"

	"github.com/platewise/mealplan-optimizer/internal/types"
)

// Store is an expiring key/value map for interpreted responses. An expired
// entry is treated as absent and evicted on read.
type Store interface {
	Get(ctx context.Context, key string) (*types.MealPlanResponse, bool)
	Set(ctx context.Context, key string, value *types.MealPlanResponse, ttl time.Duration)
}
