package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/mealplan-optimizer/internal/solver"
	"github.com/platewise/mealplan-optimizer/internal/types"
)

// optimalOutcome fabricates a solver result with two servings of recipe_a and
// one of recipe_b, which meets the testRequest macro targets exactly.
func optimalOutcome(build *BuildResult) SolveOutcome {
	values := make([]float64, build.Model.ColumnCount)
	duals := make([]float64, build.Model.RowCount)
	values[servingIndex(build, "recipe_a")] = 2
	values[servingIndex(build, "recipe_b")] = 1
	return SolveOutcome{
		Status:      solver.StatusOptimal,
		Solution:    &solver.Solution{ColumnValues: values, RowDuals: duals},
		Info:        &solver.Info{Iterations: 1, ObjectiveValue: 10},
		Version:     "gonum-simplex-bnb/0.17",
		SolveTimeMs: 1.5,
	}
}

func servingIndex(build *BuildResult, recipeID string) int {
	for _, meta := range build.Variables {
		if meta.Kind == VarServing && meta.RecipeID == recipeID {
			return meta.Index
		}
	}
	return -1
}

func TestInterpretOptimalPlan(t *testing.T) {
	req := testRequest()
	catalog := testCatalog()
	build, err := Build(req, catalog)
	require.NoError(t, err)

	resp := Interpret(req, catalog, build, optimalOutcome(build), "hash-1")

	assert.Equal(t, types.StatusOptimal, resp.Status)
	assert.Equal(t, "min_cost", resp.Objective.Name)
	require.NotNil(t, resp.Objective.Value)
	assert.Equal(t, 10.0, *resp.Objective.Value)
	assert.Equal(t, "hash-1", resp.Diagnostics.ModelHash)
	assert.Equal(t, int(solver.StatusOptimal), resp.Diagnostics.Solver.StatusCode)

	require.Len(t, resp.Daily, 1)
	day := resp.Daily[0]
	assert.Equal(t, 1, day.DayIndex)
	require.Len(t, day.Meals, 2)
	// Largest serving first.
	assert.Equal(t, "recipe_a", day.Meals[0].Items[0].RecipeID)
	assert.Equal(t, 2.0, day.Meals[0].Items[0].Servings)
	assert.Equal(t, "recipe_b", day.Meals[1].Items[0].RecipeID)

	assert.Equal(t, 1700.0, day.Totals.Kcal)
	assert.Equal(t, 105.0, day.Totals.ProteinG)
	assert.Equal(t, 10.0, day.Totals.CostUSD)
}

func TestInterpretFiltersNumericalNoise(t *testing.T) {
	req := testRequest()
	catalog := testCatalog()
	build, err := Build(req, catalog)
	require.NoError(t, err)

	outcome := optimalOutcome(build)
	outcome.Solution.ColumnValues[servingIndex(build, "recipe_b")] = 1e-9

	resp := Interpret(req, catalog, build, outcome, "hash-1")
	require.Len(t, resp.Daily, 1)
	require.Len(t, resp.Daily[0].Meals, 1)
	assert.Equal(t, "recipe_a", resp.Daily[0].Meals[0].Items[0].RecipeID)
}

func TestInterpretRoundsIntegerServings(t *testing.T) {
	req := testRequest()
	req.IntegerServings = true
	catalog := testCatalog()
	build, err := Build(req, catalog)
	require.NoError(t, err)

	outcome := optimalOutcome(build)
	outcome.Solution.ColumnValues[servingIndex(build, "recipe_a")] = 1.9999997

	resp := Interpret(req, catalog, build, outcome, "hash-1")
	assert.Equal(t, 2.0, resp.Daily[0].Meals[0].Items[0].Servings)
}

func TestInterpretSumsShadowPricesAcrossSplitRows(t *testing.T) {
	req := testRequest()
	catalog := testCatalog()
	build, err := Build(req, catalog)
	require.NoError(t, err)

	outcome := optimalOutcome(build)
	for _, meta := range build.Constraints {
		if meta.Nutrient != "kcal" {
			continue
		}
		switch meta.Kind {
		case ConstraintNutrientMin:
			outcome.Solution.RowDuals[meta.Index] = 0.5
		case ConstraintNutrientMax:
			outcome.Solution.RowDuals[meta.Index] = 0.25
		}
	}

	resp := Interpret(req, catalog, build, outcome, "hash-1")
	require.NotNil(t, resp.ShadowPrices)
	assert.Equal(t, 0.75, resp.ShadowPrices["kcal"])
	assert.NotContains(t, resp.ShadowPrices, "protein_g")
}

func TestInterpretInfeasible(t *testing.T) {
	req := testRequest()
	catalog := testCatalog()
	build, err := Build(req, catalog)
	require.NoError(t, err)

	resp := Interpret(req, catalog, build, SolveOutcome{Status: solver.StatusInfeasible}, "hash-1")

	assert.Equal(t, types.StatusInfeasible, resp.Status)
	assert.Empty(t, resp.Daily)
	assert.Nil(t, resp.Objective.Value)
	assert.Equal(t, int(solver.StatusInfeasible), resp.Diagnostics.Solver.StatusCode)
}

func TestInterpretPartialWithoutSolutionOmitsObjective(t *testing.T) {
	req := testRequest()
	catalog := testCatalog()
	build, err := Build(req, catalog)
	require.NoError(t, err)

	// A limit hit before any point was found: Info is always reported by the
	// backend, but with no solution there is no objective to attach.
	outcome := SolveOutcome{
		Status:  solver.StatusNotSet,
		Info:    &solver.Info{Iterations: 5},
		Version: "gonum-simplex-bnb/0.17",
	}

	resp := Interpret(req, catalog, build, outcome, "hash-1")
	assert.Equal(t, types.StatusPartial, resp.Status)
	assert.Empty(t, resp.Daily)
	assert.Nil(t, resp.Objective.Value)
	assert.Equal(t, 5, resp.Diagnostics.Iterations)
}

func TestInterpretPartialOnTimeLimit(t *testing.T) {
	req := testRequest()
	catalog := testCatalog()
	build, err := Build(req, catalog)
	require.NoError(t, err)

	outcome := optimalOutcome(build)
	outcome.Status = solver.StatusTimeLimitFeasible

	resp := Interpret(req, catalog, build, outcome, "hash-1")
	assert.Equal(t, types.StatusPartial, resp.Status)
	require.Len(t, resp.Daily, 1)
	assert.NotEmpty(t, resp.Daily[0].Meals)
	assert.Contains(t, resp.Diagnostics.Warnings, "solver ended with status timelimit_feasible")
}
