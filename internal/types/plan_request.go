package types

// NutrientRange is an optional {min, max} window for a single nutrient.
// A nil side means the bound is absent.
type NutrientRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// DietTargets holds the per-day macro targets for a plan.
type DietTargets struct {
	Kcal     float64 `json:"kcal" binding:"required,gte=600,lte=6000"`
	ProteinG float64 `json:"protein_g" binding:"gte=0"`
	CarbG    float64 `json:"carb_g" binding:"gte=0"`
	FatG     float64 `json:"fat_g" binding:"gte=0"`
}

// InventoryItem is an on-hand ingredient quantity supplied by the caller.
type InventoryItem struct {
	IngredientID string  `json:"ingredient_id" binding:"required"`
	Grams        float64 `json:"grams" binding:"gte=0"`
}

// Budget carries the optional daily spend ceiling.
type Budget struct {
	MaxUSDPerDay *float64 `json:"max_usd_per_day,omitempty"`
}

// BinaryVars selects how meal counts are enforced in the model.
type BinaryVars struct {
	UseRecipeLevel  *bool `json:"use_recipe_level,omitempty"`
	IntegerServings bool  `json:"integer_servings"`
}

// Preferences holds soft catalog filters.
type Preferences struct {
	Cuisine    []string `json:"cuisine,omitempty"`
	Vegetarian bool     `json:"vegetarian,omitempty"`
}

// FrequencyCaps limits how often a recipe or tag may appear per day.
// Values are maximum servings per day.
type FrequencyCaps struct {
	Recipes map[string]float64 `json:"recipes,omitempty"`
	Tags    map[string]float64 `json:"tags,omitempty"`
}

// MealPlanRequest is the wire form of an optimization request.
type MealPlanRequest struct {
	UserID             string                   `json:"user_id" binding:"required"`
	HorizonDays        int                      `json:"horizon_days"`
	MealsPerDay        int                      `json:"meals_per_day"`
	Diet               DietTargets              `json:"diet" binding:"required"`
	Micros             map[string]NutrientRange `json:"micros,omitempty"`
	Allergens          []string                 `json:"allergens,omitempty"`
	BannedIngredients  []string                 `json:"banned_ingredients,omitempty"`
	Preferences        Preferences              `json:"preferences,omitempty"`
	Inventory          []InventoryItem          `json:"inventory,omitempty"`
	Budget             Budget                   `json:"budget,omitempty"`
	Frequency          FrequencyCaps            `json:"frequency,omitempty"`
	TimePerMealMin     int                      `json:"time_per_meal_min,omitempty"`
	ServingStep        float64                  `json:"serving_step,omitempty"`
	MaxServingsPerMeal float64                  `json:"max_servings_per_meal,omitempty"`
	BinaryVars         BinaryVars               `json:"binary_vars"`
	AllowLeftovers     *bool                    `json:"allow_leftovers,omitempty"`
}
