package optimizer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/platewise/mealplan-optimizer/internal/types"
)

// nutrientAliases maps the spellings seen in the wild onto canonical nutrient
// keys. Unknown keys pass through lower-cased; the builder warns about keys
// the catalog has no data for.
var nutrientAliases = map[string]string{
	"calories":      "kcal",
	"kcal":          "kcal",
	"protein":       "protein_g",
	"protein_g":     "protein_g",
	"carb":          "carb_g",
	"carbs":         "carb_g",
	"carbohydrates": "carb_g",
	"carb_g":        "carb_g",
	"fat":           "fat_g",
	"fat_g":         "fat_g",
	"fiber":         "fiber_g",
	"fibre":         "fiber_g",
	"fiber_g":       "fiber_g",
	"sodium":        "sodium_mg",
	"sodium_mg":     "sodium_mg",
}

// CanonicalNutrient resolves a nutrient key alias.
func CanonicalNutrient(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if canonical, ok := nutrientAliases[key]; ok {
		return canonical
	}
	return key
}

func normalizeStringSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Normalize validates a raw request and produces its canonical internal form.
// It is a pure function: the input is never modified. All failures wrap
// ErrValidation so callers can tell request faults from solver outcomes.
func Normalize(raw *types.MealPlanRequest) (*Request, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty request", ErrValidation)
	}
	if strings.TrimSpace(raw.UserID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}

	horizon := raw.HorizonDays
	if horizon == 0 {
		horizon = DefaultHorizonDays
	}
	if horizon < 1 || horizon > 14 {
		return nil, fmt.Errorf("%w: horizon_days must be between 1 and 14", ErrValidation)
	}

	meals := raw.MealsPerDay
	if meals == 0 {
		meals = DefaultMealsPerDay
	}
	if meals < 1 || meals > 8 {
		return nil, fmt.Errorf("%w: meals_per_day must be between 1 and 8", ErrValidation)
	}

	diet := raw.Diet
	if diet.Kcal < 600 || diet.Kcal > 6000 {
		return nil, fmt.Errorf("%w: diet.kcal must be between 600 and 6000", ErrValidation)
	}
	if diet.ProteinG < 0 || diet.CarbG < 0 || diet.FatG < 0 {
		return nil, fmt.Errorf("%w: macro targets must be non-negative", ErrValidation)
	}

	// Physical consistency: the energy implied by the macros must agree
	// with the stated kcal target before any model is built.
	implied := 4*(diet.ProteinG+diet.CarbG) + 9*diet.FatG
	deviation := math.Abs(implied-diet.Kcal) / math.Max(diet.Kcal, 1)
	if deviation > EnergyTolerance {
		return nil, fmt.Errorf("%w: energy balance mismatch: kcal=%.1f but macros imply %.1f kcal",
			ErrValidation, diet.Kcal, implied)
	}

	step := raw.ServingStep
	if step == 0 {
		step = DefaultServingStep
	}
	if step <= 0 || step > DefaultServingUpperBound {
		return nil, fmt.Errorf("%w: serving_step must be in (0, %g]", ErrValidation, DefaultServingUpperBound)
	}

	maxServings := raw.MaxServingsPerMeal
	if maxServings == 0 {
		maxServings = DefaultServingUpperBound
	}
	if maxServings < step || maxServings > 12 {
		return nil, fmt.Errorf("%w: max_servings_per_meal must be between serving_step and 12", ErrValidation)
	}

	micros := make(map[string]NutrientRange)
	for key, r := range raw.Micros {
		if r.Min == nil && r.Max == nil {
			continue
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return nil, fmt.Errorf("%w: micros[%s] has min greater than max", ErrValidation, key)
		}
		micros[CanonicalNutrient(key)] = NutrientRange{Min: r.Min, Max: r.Max}
	}

	var budget *float64
	if raw.Budget.MaxUSDPerDay != nil {
		if *raw.Budget.MaxUSDPerDay < 0 {
			return nil, fmt.Errorf("%w: budget.max_usd_per_day must be non-negative", ErrValidation)
		}
		v := *raw.Budget.MaxUSDPerDay
		budget = &v
	}

	freqRecipes := make(map[string]float64)
	for id, limit := range raw.Frequency.Recipes {
		if limit < 0 {
			return nil, fmt.Errorf("%w: frequency.recipes[%s] must be non-negative", ErrValidation, id)
		}
		freqRecipes[strings.ToLower(strings.TrimSpace(id))] = limit
	}
	freqTags := make(map[string]float64)
	for tag, limit := range raw.Frequency.Tags {
		if limit < 0 {
			return nil, fmt.Errorf("%w: frequency.tags[%s] must be non-negative", ErrValidation, tag)
		}
		freqTags[strings.ToLower(strings.TrimSpace(tag))] = limit
	}

	inventory := make([]InventoryItem, 0, len(raw.Inventory))
	for _, item := range raw.Inventory {
		inventory = append(inventory, InventoryItem{
			IngredientID: strings.ToLower(strings.TrimSpace(item.IngredientID)),
			Grams:        item.Grams,
		})
	}

	useRecipeLevel := true
	if raw.BinaryVars.UseRecipeLevel != nil {
		useRecipeLevel = *raw.BinaryVars.UseRecipeLevel
	}
	allowLeftovers := true
	if raw.AllowLeftovers != nil {
		allowLeftovers = *raw.AllowLeftovers
	}

	return &Request{
		UserID:             raw.UserID,
		HorizonDays:        horizon,
		MealsPerDay:        meals,
		Diet: Diet{
			Kcal:     diet.Kcal,
			ProteinG: diet.ProteinG,
			CarbG:    diet.CarbG,
			FatG:     diet.FatG,
		},
		Micros:             micros,
		Allergens:          normalizeStringSet(raw.Allergens),
		BannedIngredients:  normalizeStringSet(raw.BannedIngredients),
		Cuisine:            normalizeStringSet(raw.Preferences.Cuisine),
		Vegetarian:         raw.Preferences.Vegetarian,
		Inventory:          inventory,
		Budget:             budget,
		FrequencyRecipes:   freqRecipes,
		FrequencyTags:      freqTags,
		TimePerMealMin:     raw.TimePerMealMin,
		ServingStep:        step,
		MaxServingsPerMeal: maxServings,
		UseRecipeLevel:     useRecipeLevel,
		IntegerServings:    raw.BinaryVars.IntegerServings,
		AllowLeftovers:     allowLeftovers,
	}, nil
}
