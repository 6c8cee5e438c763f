package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/mealplan-optimizer/internal/types"
)

func testResponse(hash string) *types.MealPlanResponse {
	return &types.MealPlanResponse{
		Status:      types.StatusOptimal,
		Diagnostics: types.Diagnostics{ModelHash: hash},
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "k1", testResponse("h1"), time.Minute)
	got, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, "h1", got.Diagnostics.ModelHash)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryLazyExpiry(t *testing.T) {
	c := NewMemory()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "k1", testResponse("h1"), 2*time.Minute)

	now = now.Add(time.Minute)
	_, ok := c.Get(ctx, "k1")
	assert.True(t, ok, "entry is fresh within its TTL")

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "k1")
	assert.False(t, ok, "stale entry is dropped on read")
	assert.Equal(t, 0, c.Len(), "expired entry was evicted")
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	c := NewMemory()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "k1", testResponse("h1"), 0)
	now = now.Add(24 * time.Hour)
	_, ok := c.Get(ctx, "k1")
	assert.True(t, ok)
}

func TestMemoryClear(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	c.Set(ctx, "k1", testResponse("h1"), time.Minute)
	c.Set(ctx, "k2", testResponse("h2"), time.Minute)
	c.Clear()
	assert.Equal(t, 0, c.Len())
}
