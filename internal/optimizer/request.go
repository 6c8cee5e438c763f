package optimizer

// NutrientRange is a canonical {min, max} window. Nil means unbounded.
type NutrientRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Diet holds the canonical per-day macro targets.
type Diet struct {
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	CarbG    float64 `json:"carb_g"`
	FatG     float64 `json:"fat_g"`
}

// InventoryItem is a canonicalized on-hand ingredient.
type InventoryItem struct {
	IngredientID string  `json:"ingredient_id"`
	Grams        float64 `json:"grams"`
}

// Request is the canonical internal form of a meal plan request. All string
// sets are lower-cased, de-duplicated and sorted, so marshaling a Request
// yields the same bytes for semantically identical inputs; the model hash
// relies on that.
type Request struct {
	UserID             string                   `json:"user_id"`
	HorizonDays        int                      `json:"horizon_days"`
	MealsPerDay        int                      `json:"meals_per_day"`
	Diet               Diet                     `json:"diet"`
	Micros             map[string]NutrientRange `json:"micros,omitempty"`
	Allergens          []string                 `json:"allergens"`
	BannedIngredients  []string                 `json:"banned_ingredients"`
	Cuisine            []string                 `json:"cuisine"`
	Vegetarian         bool                     `json:"vegetarian"`
	Inventory          []InventoryItem          `json:"inventory"`
	Budget             *float64                 `json:"budget,omitempty"`
	FrequencyRecipes   map[string]float64       `json:"frequency_recipes,omitempty"`
	FrequencyTags      map[string]float64       `json:"frequency_tags,omitempty"`
	TimePerMealMin     int                      `json:"time_per_meal_min,omitempty"`
	ServingStep        float64                  `json:"serving_step"`
	MaxServingsPerMeal float64                  `json:"max_servings_per_meal"`
	UseRecipeLevel     bool                     `json:"use_recipe_level"`
	IntegerServings    bool                     `json:"integer_servings"`
	AllowLeftovers     bool                     `json:"allow_leftovers"`
}
