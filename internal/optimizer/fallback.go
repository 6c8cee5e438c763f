package optimizer

import (
	"context"
	"time"
)

// fallbackRecipes is the reduced built-in catalog used when the meal database
// is unreachable. It is deliberately small but nutritionally diverse enough
// for the optimizer to keep producing plans in degraded mode.
func fallbackRecipes() []CandidateRecipe {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []CandidateRecipe{
		{
			ID:       "fallback_oats",
			Name:     "Fallback Oats",
			MealType: "BREAKFAST",
			Cuisine:  []string{"breakfast", "mediterranean"},
			Macros:   Macros{Kcal: 300, ProteinG: 10, CarbG: 54, FatG: 5, FiberG: 5, SodiumMg: 150},
			CostUSD:  0.5, PrepTimeMin: 10,
			Allergens:   []string{},
			Ingredients: []Ingredient{{IngredientID: "oats", Name: "Oats"}},
			UpdatedAt:   now,
		},
		{
			ID:       "fallback_chicken",
			Name:     "Fallback Chicken Rice",
			MealType: "DINNER",
			Cuisine:  []string{"dinner", "mediterranean"},
			Macros:   Macros{Kcal: 600, ProteinG: 40, CarbG: 60, FatG: 15, FiberG: 3, SodiumMg: 450},
			CostUSD:  2.6, PrepTimeMin: 25,
			Allergens:   []string{},
			Ingredients: []Ingredient{{IngredientID: "chicken_breast", Name: "Chicken Breast"}},
			UpdatedAt:   now,
		},
		{
			ID:       "fallback_beans",
			Name:     "Fallback Bean Chili",
			MealType: "DINNER",
			Cuisine:  []string{"dinner", "mexican", "vegetarian"},
			Macros:   Macros{Kcal: 450, ProteinG: 20, CarbG: 55, FatG: 12, FiberG: 10, SodiumMg: 380},
			CostUSD:  1.8, PrepTimeMin: 35,
			Allergens:   []string{},
			Ingredients: []Ingredient{{IngredientID: "black_beans", Name: "Black Beans"}},
			UpdatedAt:   now,
		},
	}
}

// FallbackCatalog substitutes the built-in catalog, still honoring the
// request's hard filters. The metadata is flagged so downstream responses and
// audit records show the run happened in degraded mode.
func FallbackCatalog(req *Request, reason string) *Catalog {
	base := fallbackRecipes()
	kept, excluded := filterRecipes(req, base)
	token := "fallback"
	if reason != "" {
		token = "fallback-" + reason
	}
	return &Catalog{
		Recipes: kept,
		Metadata: CatalogMetadata{
			TotalMeals:    len(base),
			UsableRecipes: len(kept),
			Excluded:      excluded,
			VersionToken:  token,
			Fallback:      true,
		},
	}
}

// StaticCatalogSource serves the built-in catalog. Used when no database is
// configured, for example in local development.
type StaticCatalogSource struct{}

func (StaticCatalogSource) Fetch(_ context.Context, req *Request) (*Catalog, error) {
	return FallbackCatalog(req, "no database configured"), nil
}
