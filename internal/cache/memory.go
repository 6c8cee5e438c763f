package cache

import (
	"context"
	"sync"
	"time"

	"github.com/platewise/mealplan-optimizer/internal/types"
)

type entry struct {
	value     *types.MealPlanResponse
	expiresAt time.Time
}

// Memory is an in-process Store. Expiry is lazy: entries are dropped when a
// read finds them stale.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *Memory) Get(_ context.Context, key string) (*types.MealPlanResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && e.expiresAt.Before(c.now()) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Memory) Set(_ context.Context, key string, value *types.MealPlanResponse, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: expiresAt}
}

// Len reports the number of stored entries, including not-yet-evicted
// expired ones.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}
