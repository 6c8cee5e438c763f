package types

// Plan statuses returned to the caller. Every failure class in the engine maps
// onto exactly one of these.
const (
	StatusOptimal    = "optimal"
	StatusInfeasible = "infeasible"
	StatusPartial    = "partial"
	StatusError      = "error"
)

// Objective reports what was minimized and the value reached.
type Objective struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value,omitempty"`
}

// MealItem is a single recipe selection inside a meal.
type MealItem struct {
	RecipeID string  `json:"recipe_id"`
	Servings float64 `json:"servings"`
}

// Meal groups the items served together.
type Meal struct {
	Name  string     `json:"name"`
	Items []MealItem `json:"items"`
}

// DayTotals accumulates nutrition and spend for one day of the plan.
type DayTotals struct {
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	CarbG    float64 `json:"carb_g"`
	FatG     float64 `json:"fat_g"`
	CostUSD  float64 `json:"cost_usd"`
}

// DayPlan is the interpreted plan for a single day.
type DayPlan struct {
	DayIndex int       `json:"day_index"`
	Meals    []Meal    `json:"meals"`
	Totals   DayTotals `json:"totals"`
}

// SolverDiagnostics identifies the backend that produced the solution.
type SolverDiagnostics struct {
	Version    string `json:"version,omitempty"`
	StatusCode int    `json:"status_code"`
}

// Diagnostics carries run metadata alongside the plan.
type Diagnostics struct {
	SolveTimeMs float64           `json:"solve_time_ms,omitempty"`
	Iterations  int               `json:"iterations,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
	ModelHash   string            `json:"model_hash,omitempty"`
	CacheHit    bool              `json:"cache_hit,omitempty"`
	Solver      SolverDiagnostics `json:"solver"`
}

// MealPlanResponse is the wire form of an optimization result.
type MealPlanResponse struct {
	Status       string             `json:"status"`
	Objective    Objective          `json:"objective"`
	Daily        []DayPlan          `json:"daily"`
	ShadowPrices map[string]float64 `json:"shadow_prices,omitempty"`
	Diagnostics  Diagnostics        `json:"diagnostics"`
}
