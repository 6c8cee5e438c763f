package optimizer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/platewise/mealplan-optimizer/internal/models"
)

// Macros is a per-serving nutrient vector for a candidate recipe.
type Macros struct {
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	CarbG    float64 `json:"carb_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	SodiumMg float64 `json:"sodium_mg"`
}

// Ingredient is a named component of a candidate recipe.
type Ingredient struct {
	IngredientID string `json:"ingredient_id"`
	Name         string `json:"name"`
}

// CandidateRecipe is a catalog entry eligible for the model.
type CandidateRecipe struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	MealType    string       `json:"meal_type,omitempty"`
	Cuisine     []string     `json:"cuisine"`
	Macros      Macros       `json:"macros"`
	CostUSD     float64      `json:"cost_usd"`
	PrepTimeMin int          `json:"prep_time_min"`
	Allergens   []string     `json:"allergens"`
	Ingredients []Ingredient `json:"ingredients"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NutrientValue returns the per-serving amount for a canonical nutrient key.
// The second return is false for nutrients the catalog carries no data for.
func (r *CandidateRecipe) NutrientValue(key string) (float64, bool) {
	switch key {
	case "kcal":
		return r.Macros.Kcal, true
	case "protein_g":
		return r.Macros.ProteinG, true
	case "carb_g":
		return r.Macros.CarbG, true
	case "fat_g":
		return r.Macros.FatG, true
	case "fiber_g":
		return r.Macros.FiberG, true
	case "sodium_mg":
		return r.Macros.SodiumMg, true
	default:
		return 0, false
	}
}

// ExclusionCounts records how many catalog entries each hard filter removed.
type ExclusionCounts struct {
	Allergens int `json:"allergens"`
	Banned    int `json:"banned"`
	Cuisine   int `json:"cuisine"`
}

// CatalogMetadata describes a catalog snapshot.
type CatalogMetadata struct {
	TotalMeals    int             `json:"totalMeals"`
	UsableRecipes int             `json:"usableRecipes"`
	Excluded      ExclusionCounts `json:"excluded"`
	VersionToken  string          `json:"versionToken"`
	Fallback      bool            `json:"fallback,omitempty"`
}

// Catalog is the filtered candidate set handed to the model builder.
type Catalog struct {
	Recipes  []CandidateRecipe `json:"recipes"`
	Metadata CatalogMetadata   `json:"metadata"`
}

// CatalogSource resolves a normalized request into candidate recipes.
// Implementations must be pure with respect to the request: the same request
// against the same underlying data yields the same catalog and version token.
type CatalogSource interface {
	Fetch(ctx context.Context, req *Request) (*Catalog, error)
}

// filterRecipes applies the hard catalog filters: allergen intersection,
// banned ingredients, cuisine preference and vegetarian-only.
func filterRecipes(req *Request, recipes []CandidateRecipe) ([]CandidateRecipe, ExclusionCounts) {
	allergenSet := toSet(req.Allergens)
	bannedSet := toSet(req.BannedIngredients)

	var kept []CandidateRecipe
	var excluded ExclusionCounts

recipeLoop:
	for _, recipe := range recipes {
		for _, a := range recipe.Allergens {
			if _, forbidden := allergenSet[a]; forbidden {
				excluded.Allergens++
				continue recipeLoop
			}
		}
		for _, ing := range recipe.Ingredients {
			if _, banned := bannedSet[ing.IngredientID]; banned {
				excluded.Banned++
				continue recipeLoop
			}
		}
		if len(req.Cuisine) > 0 && !intersects(req.Cuisine, recipe.Cuisine) {
			excluded.Cuisine++
			continue
		}
		if req.Vegetarian && !intersects([]string{"vegetarian", "vegan"}, recipe.Cuisine) {
			excluded.Cuisine++
			continue
		}
		kept = append(kept, recipe)
	}
	return kept, excluded
}

// versionToken derives an order-independent digest of the usable recipe set,
// so the token changes exactly when the underlying catalog data changes.
func versionToken(recipes []CandidateRecipe) string {
	seeds := make([]string, 0, len(recipes))
	for _, r := range recipes {
		seeds = append(seeds, fmt.Sprintf("%s:%d", r.ID, r.UpdatedAt.UnixMilli()))
	}
	sort.Strings(seeds)
	return HashParts(strings.Join(seeds, "|"))
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func intersects(wanted, have []string) bool {
	haveSet := toSet(have)
	for _, w := range wanted {
		if _, ok := haveSet[w]; ok {
			return true
		}
	}
	return false
}

// slugIngredient turns a display name into a stable ingredient id.
func slugIngredient(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// GormCatalogSource loads candidate recipes from the meal catalog database.
type GormCatalogSource struct {
	db    *gorm.DB
	limit int
}

// NewGormCatalogSource returns a database-backed catalog source.
func NewGormCatalogSource(db *gorm.DB) *GormCatalogSource {
	return &GormCatalogSource{db: db, limit: MaxRecipes}
}

// Fetch loads up to MaxRecipes meals, converts them into candidate recipes
// and applies the hard filters. Database failures are returned to the caller,
// which is expected to substitute the fallback catalog.
func (s *GormCatalogSource) Fetch(ctx context.Context, req *Request) (*Catalog, error) {
	var meals []models.Meal
	if err := s.db.WithContext(ctx).Preload("Recipe").Limit(s.limit).Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("loading meal catalog: %w", err)
	}

	recipes := make([]CandidateRecipe, 0, len(meals))
	for i := range meals {
		recipes = append(recipes, candidateFromMeal(&meals[i], req))
	}

	kept, excluded := filterRecipes(req, recipes)
	return &Catalog{
		Recipes: kept,
		Metadata: CatalogMetadata{
			TotalMeals:    len(meals),
			UsableRecipes: len(kept),
			Excluded:      excluded,
			VersionToken:  versionToken(kept),
		},
	}, nil
}

func candidateFromMeal(meal *models.Meal, req *Request) CandidateRecipe {
	kcal := meal.Calories
	if kcal == 0 {
		kcal = 4*(meal.Protein+meal.Carbs) + 9*meal.Fat
	}

	cost := meal.PriceUSD
	prepTime := 30
	name := meal.MealName
	var cuisine []string
	if meal.Recipe != nil {
		cuisine = normalizeStringSet(meal.Recipe.Tags)
		if cost == 0 {
			cost = meal.Recipe.EstimatedCost
		}
		if meal.Recipe.PrepTimeMin > 0 {
			prepTime = meal.Recipe.PrepTimeMin
		}
		if name == "" {
			name = meal.Recipe.RecipeName
		}
	}
	if req.TimePerMealMin > 0 && meal.Recipe == nil {
		prepTime = req.TimePerMealMin
	}

	ingredients := make([]Ingredient, 0, len(meal.Ingredients))
	for _, ingName := range normalizeStringSet(meal.Ingredients) {
		ingredients = append(ingredients, Ingredient{
			IngredientID: slugIngredient(ingName),
			Name:         ingName,
		})
	}

	return CandidateRecipe{
		ID:       meal.ID.String(),
		Name:     name,
		MealType: meal.MealType,
		Cuisine:  cuisine,
		Macros: Macros{
			Kcal:     kcal,
			ProteinG: meal.Protein,
			CarbG:    meal.Carbs,
			FatG:     meal.Fat,
			FiberG:   meal.Fiber,
			SodiumMg: meal.SodiumMg,
		},
		CostUSD:     cost,
		PrepTimeMin: prepTime,
		Allergens:   normalizeStringSet(meal.Allergens),
		Ingredients: ingredients,
		UpdatedAt:   meal.UpdatedAt,
	}
}
