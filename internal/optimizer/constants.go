package optimizer

import "time"

// Engine-wide constants. Penalties and tolerances are part of the engine's
// contract: changing them changes which plans are considered optimal.
const (
	// DefaultServingUpperBound caps servings of a single recipe per meal.
	DefaultServingUpperBound = 6.0
	// SlackPenalty is the objective cost per unit of macro-target violation.
	SlackPenalty = 25.0
	// MicroSlackPenalty is the lighter cost for micronutrient violation.
	MicroSlackPenalty = 15.0
	// IndicatorNudge discourages spurious binary selections without
	// materially affecting the cost trade-off.
	IndicatorNudge = 0.01
	// EnergyTolerance is the allowed relative gap between the stated kcal
	// target and the energy implied by the macro targets.
	EnergyTolerance = 0.12
	// HashNamespace prefixes every model hash so cache keys never collide
	// with other users of a shared store.
	HashNamespace = "meal-optimizer:v1"
	// MaxRecipes bounds how many catalog entries one model may use.
	MaxRecipes = 400
	// Epsilon is the serving level below which a solver value is treated
	// as numerical noise rather than a selection.
	Epsilon = 1e-6

	DefaultHorizonDays = 1
	DefaultMealsPerDay = 3
	DefaultServingStep = 1.0

	DefaultCacheTTL       = 2 * time.Minute
	DefaultSolveTimeLimit = 3 * time.Second
)
