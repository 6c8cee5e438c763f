package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/platewise/mealplan-optimizer/internal/solver"
	"github.com/platewise/mealplan-optimizer/internal/types"
)

// SolveOutcome bundles everything the solver adapter reported for one run.
type SolveOutcome struct {
	Status      solver.Status
	Solution    *solver.Solution
	Info        *solver.Info
	Version     string
	SolveTimeMs float64
}

const objectiveName = "min_cost"

// round keeps responses stable under solver-internal floating jitter.
func round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

// Interpret maps raw solver output back into a day-by-day plan. Infeasible
// models produce diagnostics only; any other non-optimal status yields a
// partial response, with a plan attached when the solver still has a usable
// point (for example after a time limit).
func Interpret(req *Request, catalog *Catalog, build *BuildResult, outcome SolveOutcome, modelHash string) *types.MealPlanResponse {
	diagnostics := types.Diagnostics{
		SolveTimeMs: outcome.SolveTimeMs,
		Warnings:    build.Warnings,
		ModelHash:   modelHash,
		Solver: types.SolverDiagnostics{
			Version:    outcome.Version,
			StatusCode: int(outcome.Status),
		},
	}
	if outcome.Info != nil {
		diagnostics.Iterations = outcome.Info.Iterations
	}

	if outcome.Status == solver.StatusInfeasible {
		return &types.MealPlanResponse{
			Status:      types.StatusInfeasible,
			Objective:   types.Objective{Name: objectiveName},
			Daily:       []types.DayPlan{},
			Diagnostics: diagnostics,
		}
	}

	status := types.StatusOptimal
	if outcome.Status != solver.StatusOptimal {
		status = types.StatusPartial
		diagnostics.Warnings = append(append([]string(nil), diagnostics.Warnings...),
			fmt.Sprintf("solver ended with status %s", outcome.Status))
	}

	if outcome.Solution == nil {
		return &types.MealPlanResponse{
			Status:      status,
			Objective:   types.Objective{Name: objectiveName},
			Daily:       []types.DayPlan{},
			Diagnostics: diagnostics,
		}
	}

	recipeByID := make(map[string]*CandidateRecipe, len(catalog.Recipes))
	for i := range catalog.Recipes {
		recipeByID[catalog.Recipes[i].ID] = &catalog.Recipes[i]
	}

	values := outcome.Solution.ColumnValues
	daily := make([]types.DayPlan, 0, req.HorizonDays)
	for day := 0; day < req.HorizonDays; day++ {
		type selection struct {
			recipe   *CandidateRecipe
			servings float64
		}
		var selections []selection
		for _, meta := range build.Variables {
			if meta.Kind != VarServing || meta.Day != day {
				continue
			}
			servings := values[meta.Index] * req.ServingStep
			if servings <= Epsilon {
				continue
			}
			recipe, ok := recipeByID[meta.RecipeID]
			if !ok {
				continue
			}
			selections = append(selections, selection{recipe, servings})
		}
		sort.Slice(selections, func(i, j int) bool {
			if selections[i].servings != selections[j].servings {
				return selections[i].servings > selections[j].servings
			}
			return selections[i].recipe.ID < selections[j].recipe.ID
		})

		meals := make([]types.Meal, 0, len(selections))
		var totals types.DayTotals
		for _, sel := range selections {
			servings := round(sel.servings, 2)
			if req.IntegerServings {
				servings = math.Round(sel.servings)
			}
			meals = append(meals, types.Meal{
				Name: sel.recipe.Name,
				Items: []types.MealItem{
					{RecipeID: sel.recipe.ID, Servings: servings},
				},
			})
			totals.Kcal += sel.recipe.Macros.Kcal * sel.servings
			totals.ProteinG += sel.recipe.Macros.ProteinG * sel.servings
			totals.CarbG += sel.recipe.Macros.CarbG * sel.servings
			totals.FatG += sel.recipe.Macros.FatG * sel.servings
			totals.CostUSD += sel.recipe.CostUSD * sel.servings
		}
		daily = append(daily, types.DayPlan{
			DayIndex: day + 1,
			Meals:    meals,
			Totals: types.DayTotals{
				Kcal:     round(totals.Kcal, 2),
				ProteinG: round(totals.ProteinG, 2),
				CarbG:    round(totals.CarbG, 2),
				FatG:     round(totals.FatG, 2),
				CostUSD:  round(totals.CostUSD, 2),
			},
		})
	}

	// Duals of nutrient rows surface as shadow prices, summed across the
	// split min/max rows of the same nutrient.
	shadowPrices := make(map[string]float64)
	for _, meta := range build.Constraints {
		if meta.Nutrient == "" || meta.Index >= len(outcome.Solution.RowDuals) {
			continue
		}
		dual := outcome.Solution.RowDuals[meta.Index]
		if math.IsNaN(dual) || math.IsInf(dual, 0) {
			continue
		}
		shadowPrices[meta.Nutrient] += round(dual, 4)
	}
	if len(shadowPrices) == 0 {
		shadowPrices = nil
	}

	resp := &types.MealPlanResponse{
		Status:       status,
		Objective:    types.Objective{Name: objectiveName},
		Daily:        daily,
		ShadowPrices: shadowPrices,
		Diagnostics:  diagnostics,
	}
	if outcome.Info != nil {
		value := round(outcome.Info.ObjectiveValue, 2)
		resp.Objective.Value = &value
	}
	return resp
}
