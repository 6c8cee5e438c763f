package optimizer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/mealplan-optimizer/internal/solver"
	"github.com/platewise/mealplan-optimizer/internal/types"
)

// stubSource returns a fixed catalog without applying any filters, so tests
// can exercise the builder's own hard-blocking path.
type stubSource struct {
	catalog *Catalog
	err     error
	calls   int
}

func (s *stubSource) Fetch(context.Context, *Request) (*Catalog, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.catalog, nil
}

func continuousRequest() *types.MealPlanRequest {
	raw := rawRequest()
	recipeLevel := false
	raw.BinaryVars.UseRecipeLevel = &recipeLevel
	return raw
}

func TestOptimizePicksCheapestNutritionMatch(t *testing.T) {
	svc := NewService(&stubSource{catalog: testCatalog()}, nil, nil, nil, nil, Config{})

	resp, err := svc.Optimize(context.Background(), continuousRequest())
	require.NoError(t, err)

	// Two servings of recipe_a plus one of recipe_b hit every macro target
	// exactly; anything else trades cheap cost for expensive slack.
	assert.Equal(t, types.StatusOptimal, resp.Status)
	require.Len(t, resp.Daily, 1)
	day := resp.Daily[0]
	require.Len(t, day.Meals, 2)
	assert.Equal(t, "recipe_a", day.Meals[0].Items[0].RecipeID)
	assert.InDelta(t, 2, day.Meals[0].Items[0].Servings, 1e-4)
	assert.Equal(t, "recipe_b", day.Meals[1].Items[0].RecipeID)
	assert.InDelta(t, 1, day.Meals[1].Items[0].Servings, 1e-4)

	require.NotNil(t, resp.Objective.Value)
	assert.InDelta(t, 10, *resp.Objective.Value, 1e-2)
	assert.False(t, resp.Diagnostics.CacheHit)
	assert.NotEmpty(t, resp.Diagnostics.ModelHash)
}

func TestOptimizeInfeasibleWhenEveryCandidateBlocked(t *testing.T) {
	catalog := testCatalog()
	catalog.Recipes = catalog.Recipes[:1]
	catalog.Recipes[0].Allergens = []string{"nuts"}
	svc := NewService(&stubSource{catalog: catalog}, nil, nil, nil, nil, Config{})

	raw := continuousRequest()
	raw.Allergens = []string{"nuts"}

	resp, err := svc.Optimize(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInfeasible, resp.Status)
	assert.Empty(t, resp.Daily)
	assert.NotEmpty(t, resp.Diagnostics.Warnings)
}

func TestOptimizeBudgetFlipsFeasibility(t *testing.T) {
	svc := NewService(&stubSource{catalog: testCatalog()}, nil, nil, nil, nil, Config{})

	tight := continuousRequest()
	tight.Budget.MaxUSDPerDay = floatPtr(5)
	resp, err := svc.Optimize(context.Background(), tight)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInfeasible, resp.Status, "three meals cost at least 9 USD")

	loose := continuousRequest()
	loose.Budget.MaxUSDPerDay = floatPtr(20)
	resp, err = svc.Optimize(context.Background(), loose)
	require.NoError(t, err)
	assert.Equal(t, types.StatusOptimal, resp.Status)
}

func TestOptimizeCachesByModelHash(t *testing.T) {
	source := &stubSource{catalog: testCatalog()}
	svc := NewService(source, nil, nil, nil, nil, Config{})

	first, err := svc.Optimize(context.Background(), continuousRequest())
	require.NoError(t, err)
	assert.False(t, first.Diagnostics.CacheHit)

	second, err := svc.Optimize(context.Background(), continuousRequest())
	require.NoError(t, err)
	assert.True(t, second.Diagnostics.CacheHit)
	assert.Equal(t, first.Diagnostics.ModelHash, second.Diagnostics.ModelHash)
	assert.Equal(t, first.Daily, second.Daily)
	assert.Equal(t, 2, source.calls, "the catalog is still consulted for its version token")
}

// barrierSource holds every Fetch until all expected callers have arrived, so
// concurrent requests are guaranteed to miss the cache together.
type barrierSource struct {
	catalog *Catalog
	barrier *sync.WaitGroup
}

func (s *barrierSource) Fetch(context.Context, *Request) (*Catalog, error) {
	s.barrier.Done()
	s.barrier.Wait()
	return s.catalog, nil
}

func TestOptimizeSharesInFlightSolves(t *testing.T) {
	const workers = 16

	var builds atomic.Int32
	factory := func(opts solver.Options) solver.Adapter {
		builds.Add(1)
		return solver.NewBackend(opts)
	}
	var barrier sync.WaitGroup
	barrier.Add(workers)
	svc := NewService(&barrierSource{catalog: testCatalog(), barrier: &barrier}, factory, nil, nil, nil, Config{})

	var (
		wg        sync.WaitGroup
		errs      = make([]error, workers)
		responses = make([]*types.MealPlanResponse, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			responses[i], errs[i] = svc.Optimize(context.Background(), continuousRequest())
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, responses[i])
		assert.Equal(t, responses[0].Diagnostics.ModelHash, responses[i].Diagnostics.ModelHash)
		assert.Equal(t, responses[0].Daily, responses[i].Daily)
	}
	assert.Equal(t, int32(1), builds.Load(), "identical in-flight requests share one solve")
}

func TestOptimizeDifferentRequestsMissCache(t *testing.T) {
	svc := NewService(&stubSource{catalog: testCatalog()}, nil, nil, nil, nil, Config{})

	first, err := svc.Optimize(context.Background(), continuousRequest())
	require.NoError(t, err)

	changed := continuousRequest()
	changed.Diet = types.DietTargets{Kcal: 1800, ProteinG: 110, CarbG: 180, FatG: 55}
	second, err := svc.Optimize(context.Background(), changed)
	require.NoError(t, err)

	assert.False(t, second.Diagnostics.CacheHit)
	assert.NotEqual(t, first.Diagnostics.ModelHash, second.Diagnostics.ModelHash)
}

func TestOptimizeFallsBackWhenCatalogUnavailable(t *testing.T) {
	svc := NewService(&stubSource{err: errors.New("db down")}, nil, nil, nil, nil, Config{})

	resp, err := svc.Optimize(context.Background(), continuousRequest())
	require.NoError(t, err)
	assert.NotEqual(t, types.StatusError, resp.Status)
	assert.NotEmpty(t, resp.Daily)
	assert.Contains(t, resp.Diagnostics.Warnings, "using fallback recipe catalog: meal database unavailable")
}

func TestOptimizeRejectsInvalidRequest(t *testing.T) {
	svc := NewService(&stubSource{catalog: testCatalog()}, nil, nil, nil, nil, Config{})

	raw := continuousRequest()
	raw.UserID = ""
	_, err := svc.Optimize(context.Background(), raw)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOptimizeEmptyCandidateSet(t *testing.T) {
	svc := NewService(&stubSource{catalog: &Catalog{Metadata: CatalogMetadata{VersionToken: "empty"}}}, nil, nil, nil, nil, Config{})

	_, err := svc.Optimize(context.Background(), continuousRequest())
	assert.ErrorIs(t, err, ErrEmptyCandidateSet)
}

func TestPreviewResolvesCatalogWithoutSolving(t *testing.T) {
	source := &stubSource{catalog: testCatalog()}
	svc := NewService(source, nil, nil, nil, nil, Config{})

	catalog, err := svc.Preview(context.Background(), continuousRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Metadata.UsableRecipes)
	assert.Equal(t, 1, source.calls)
}
