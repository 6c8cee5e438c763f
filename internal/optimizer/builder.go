package optimizer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/platewise/mealplan-optimizer/internal/solver"
)

// VarKind classifies a model column.
type VarKind string

const (
	VarServing   VarKind = "serving"
	VarIndicator VarKind = "indicator"
	VarSlack     VarKind = "slack"
)

// VariableMeta ties a model column back to its meaning.
type VariableMeta struct {
	Index    int
	Kind     VarKind
	Day      int
	RecipeID string
	Nutrient string
	Bound    string
}

// ConstraintKind is the discriminated row vocabulary. The interpreter uses it
// to attribute dual values back to nutrients.
type ConstraintKind string

const (
	ConstraintNutrientMin     ConstraintKind = "nutrient-min"
	ConstraintNutrientMax     ConstraintKind = "nutrient-max"
	ConstraintBudgetMax       ConstraintKind = "budget-max"
	ConstraintMealCount       ConstraintKind = "meal-count"
	ConstraintMealCountBinary ConstraintKind = "meal-count-binary"
	ConstraintLinking         ConstraintKind = "linking"
	ConstraintTagCap          ConstraintKind = "tag-cap"
)

// ConstraintMeta ties a model row back to its meaning.
type ConstraintMeta struct {
	Index      int
	Kind       ConstraintKind
	Day        int
	Nutrient   string
	RecipeID   string
	Tag        string
	SlackIndex int
}

// BuildResult bundles the immutable model with the metadata needed to
// interpret its solution.
type BuildResult struct {
	Model       *solver.Model
	Variables   []VariableMeta
	Constraints []ConstraintMeta
	Warnings    []string
}

type builderRow struct {
	meta   ConstraintMeta
	lower  float64
	upper  float64
	coeffs map[int]float64
}

type modelBuilder struct {
	vars       []VariableMeta
	colLower   []float64
	colUpper   []float64
	colInteger []bool
	objective  []float64
	rows       []builderRow
	warnings   []string
}

func (b *modelBuilder) addVariable(meta VariableMeta, lower, upper, objective float64, integer bool) int {
	meta.Index = len(b.vars)
	b.vars = append(b.vars, meta)
	b.colLower = append(b.colLower, lower)
	b.colUpper = append(b.colUpper, upper)
	b.objective = append(b.objective, objective)
	b.colInteger = append(b.colInteger, integer)
	return meta.Index
}

func (b *modelBuilder) addRow(meta ConstraintMeta, lower, upper float64, coeffs map[int]float64) int {
	meta.Index = len(b.rows)
	b.rows = append(b.rows, builderRow{meta: meta, lower: lower, upper: upper, coeffs: coeffs})
	return meta.Index
}

func (b *modelBuilder) addSlack(meta VariableMeta, penalty float64) int {
	meta.Kind = VarSlack
	return b.addVariable(meta, 0, math.Inf(1), penalty, false)
}

// finalize flattens the accumulated rows into compressed sparse row layout.
// Column indices are sorted ascending within each row; both the solver and
// reproducible hashing depend on that ordering.
func (b *modelBuilder) finalize(maximize bool) *solver.Model {
	m := &solver.Model{
		ColumnCount: len(b.vars),
		ColumnLower: b.colLower,
		ColumnUpper: b.colUpper,
		Integrality: b.colInteger,
		Objective:   b.objective,
		RowCount:    len(b.rows),
		Maximize:    maximize,
	}
	nnz := 0
	for _, row := range b.rows {
		nnz += len(row.coeffs)
	}
	m.Offsets = make([]int, 0, len(b.rows)+1)
	m.Indices = make([]int, 0, nnz)
	m.Values = make([]float64, 0, nnz)
	m.RowLower = make([]float64, 0, len(b.rows))
	m.RowUpper = make([]float64, 0, len(b.rows))

	m.Offsets = append(m.Offsets, 0)
	for _, row := range b.rows {
		cols := make([]int, 0, len(row.coeffs))
		for col := range row.coeffs {
			cols = append(cols, col)
		}
		sort.Ints(cols)
		for _, col := range cols {
			m.Indices = append(m.Indices, col)
			m.Values = append(m.Values, row.coeffs[col])
		}
		m.Offsets = append(m.Offsets, len(m.Values))
		m.RowLower = append(m.RowLower, row.lower)
		m.RowUpper = append(m.RowUpper, row.upper)
	}
	return m
}

// Build turns a normalized request and a candidate catalog into a sparse
// optimization model. It fails only when the candidate set is empty; every
// other irregularity becomes a warning or a bound adjustment.
func Build(req *Request, catalog *Catalog) (*BuildResult, error) {
	if len(catalog.Recipes) == 0 {
		return nil, ErrEmptyCandidateSet
	}

	b := &modelBuilder{}
	step := req.ServingStep
	servingCap := req.MaxServingsPerMeal / step

	allergenSet := toSet(req.Allergens)
	bannedSet := toSet(req.BannedIngredients)

	days := req.HorizonDays
	recipes := catalog.Recipes

	// Serving variables, one per (day, recipe). A recipe that slipped past
	// the catalog filters with a forbidden allergen or banned ingredient is
	// neutralized here: its upper bound is forced to zero, never penalized.
	blockedWarned := make(map[string]bool)
	xIndex := make(map[[2]int]int, days*len(recipes))
	for day := 0; day < days; day++ {
		for r := range recipes {
			recipe := &recipes[r]
			upper := servingCap
			if blocked, why := hardBlocked(recipe, allergenSet, bannedSet); blocked {
				upper = 0
				if !blockedWarned[recipe.ID] {
					blockedWarned[recipe.ID] = true
					b.warnings = append(b.warnings, fmt.Sprintf("recipe %s excluded: %s", recipe.ID, why))
				}
			}
			if limit, ok := req.FrequencyRecipes[strings.ToLower(recipe.ID)]; ok {
				upper = math.Min(upper, limit/step)
			}
			idx := b.addVariable(
				VariableMeta{Kind: VarServing, Day: day, RecipeID: recipe.ID},
				0, upper, recipe.CostUSD*step, req.IntegerServings,
			)
			xIndex[[2]int{day, r}] = idx
		}
	}

	// Binary "recipe used" indicators, when recipe-level meal counting is
	// requested. The nudge keeps the solver from switching indicators on
	// without serving anything.
	yIndex := make(map[[2]int]int)
	if req.UseRecipeLevel {
		for day := 0; day < days; day++ {
			for r := range recipes {
				idx := b.addVariable(
					VariableMeta{Kind: VarIndicator, Day: day, RecipeID: recipes[r].ID},
					0, 1, IndicatorNudge, true,
				)
				yIndex[[2]int{day, r}] = idx
			}
		}
	}

	// Soft nutrition windows: each bound side gets its own slack variable so
	// a tight nutrition target can never make the whole model infeasible.
	macroTargets := []struct {
		key   string
		value float64
	}{
		{"kcal", req.Diet.Kcal},
		{"protein_g", req.Diet.ProteinG},
		{"carb_g", req.Diet.CarbG},
		{"fat_g", req.Diet.FatG},
	}
	for day := 0; day < days; day++ {
		for _, target := range macroTargets {
			base := b.nutrientCoeffs(recipes, xIndex, day, target.key, step)

			coeffMin := copyCoeffs(base)
			slackMin := b.addSlack(VariableMeta{Day: day, Nutrient: target.key, Bound: "min"}, SlackPenalty)
			coeffMin[slackMin] = 1
			b.addRow(
				ConstraintMeta{Kind: ConstraintNutrientMin, Day: day, Nutrient: target.key, SlackIndex: slackMin},
				target.value, math.Inf(1), coeffMin,
			)

			coeffMax := copyCoeffs(base)
			slackMax := b.addSlack(VariableMeta{Day: day, Nutrient: target.key, Bound: "max"}, SlackPenalty)
			coeffMax[slackMax] = -1
			b.addRow(
				ConstraintMeta{Kind: ConstraintNutrientMax, Day: day, Nutrient: target.key, SlackIndex: slackMax},
				math.Inf(-1), target.value, coeffMax,
			)
		}
	}

	for _, micro := range sortedKeys(req.Micros) {
		r := req.Micros[micro]
		if _, known := recipes[0].NutrientValue(micro); !known {
			b.warnings = append(b.warnings, fmt.Sprintf("micronutrient %s not available in catalog data", micro))
			continue
		}
		for day := 0; day < days; day++ {
			base := b.nutrientCoeffs(recipes, xIndex, day, micro, step)
			if r.Min != nil {
				coeff := copyCoeffs(base)
				slack := b.addSlack(VariableMeta{Day: day, Nutrient: micro, Bound: "min"}, MicroSlackPenalty)
				coeff[slack] = 1
				b.addRow(
					ConstraintMeta{Kind: ConstraintNutrientMin, Day: day, Nutrient: micro, SlackIndex: slack},
					*r.Min, math.Inf(1), coeff,
				)
			}
			if r.Max != nil {
				coeff := copyCoeffs(base)
				slack := b.addSlack(VariableMeta{Day: day, Nutrient: micro, Bound: "max"}, MicroSlackPenalty)
				coeff[slack] = -1
				b.addRow(
					ConstraintMeta{Kind: ConstraintNutrientMax, Day: day, Nutrient: micro, SlackIndex: slack},
					math.Inf(-1), *r.Max, coeff,
				)
			}
		}
	}

	// Hard daily budget ceiling.
	if req.Budget != nil {
		for day := 0; day < days; day++ {
			coeff := make(map[int]float64, len(recipes))
			for r := range recipes {
				coeff[xIndex[[2]int{day, r}]] = recipes[r].CostUSD * step
			}
			b.addRow(
				ConstraintMeta{Kind: ConstraintBudgetMax, Day: day, SlackIndex: -1},
				math.Inf(-1), *req.Budget, coeff,
			)
		}
	}

	// Hard meal count, either over binary indicators with big-M linking or
	// directly over serving sums.
	for day := 0; day < days; day++ {
		if req.UseRecipeLevel {
			coeff := make(map[int]float64, len(recipes))
			for r := range recipes {
				coeff[yIndex[[2]int{day, r}]] = 1
			}
			b.addRow(
				ConstraintMeta{Kind: ConstraintMealCountBinary, Day: day, SlackIndex: -1},
				float64(req.MealsPerDay), float64(req.MealsPerDay), coeff,
			)

			// Linking: servings - BigM*used <= 0, with BigM equal to the
			// per-meal serving cap, forces servings to zero when the
			// indicator is off.
			for r := range recipes {
				coeff := map[int]float64{
					xIndex[[2]int{day, r}]: 1,
					yIndex[[2]int{day, r}]: -servingCap,
				}
				b.addRow(
					ConstraintMeta{Kind: ConstraintLinking, Day: day, RecipeID: recipes[r].ID, SlackIndex: -1},
					math.Inf(-1), 0, coeff,
				)
			}
		} else {
			coeff := make(map[int]float64, len(recipes))
			for r := range recipes {
				coeff[xIndex[[2]int{day, r}]] = step
			}
			b.addRow(
				ConstraintMeta{Kind: ConstraintMealCount, Day: day, SlackIndex: -1},
				float64(req.MealsPerDay), float64(req.MealsPerDay), coeff,
			)
		}
	}

	// Per-tag frequency caps: bounded serving sums over the matching subset.
	for _, tag := range sortedKeys(req.FrequencyTags) {
		limit := req.FrequencyTags[tag]
		matched := false
		for day := 0; day < days; day++ {
			coeff := make(map[int]float64)
			for r := range recipes {
				if intersects([]string{tag}, recipes[r].Cuisine) {
					coeff[xIndex[[2]int{day, r}]] = step
				}
			}
			if len(coeff) == 0 {
				break
			}
			matched = true
			b.addRow(
				ConstraintMeta{Kind: ConstraintTagCap, Day: day, Tag: tag, SlackIndex: -1},
				math.Inf(-1), limit, coeff,
			)
		}
		if !matched {
			b.warnings = append(b.warnings, fmt.Sprintf("frequency cap for tag %q matches no recipe", tag))
		}
	}

	if len(req.Inventory) > 0 {
		b.warnings = append(b.warnings, "inventory constraints skipped: recipe ingredient weights unavailable")
	}

	metas := make([]ConstraintMeta, len(b.rows))
	for i := range b.rows {
		metas[i] = b.rows[i].meta
	}
	return &BuildResult{
		Model:       b.finalize(false),
		Variables:   b.vars,
		Constraints: metas,
		Warnings:    b.warnings,
	}, nil
}

func (b *modelBuilder) nutrientCoeffs(recipes []CandidateRecipe, xIndex map[[2]int]int, day int, key string, step float64) map[int]float64 {
	coeffs := make(map[int]float64, len(recipes))
	for r := range recipes {
		value, ok := recipes[r].NutrientValue(key)
		if !ok {
			continue
		}
		coeffs[xIndex[[2]int{day, r}]] = value * step
	}
	return coeffs
}

func hardBlocked(recipe *CandidateRecipe, allergens, banned map[string]struct{}) (bool, string) {
	for _, a := range recipe.Allergens {
		if _, forbidden := allergens[a]; forbidden {
			return true, "allergen " + a
		}
	}
	for _, ing := range recipe.Ingredients {
		if _, b := banned[ing.IngredientID]; b {
			return true, "banned ingredient " + ing.IngredientID
		}
	}
	return false, ""
}

func copyCoeffs(src map[int]float64) map[int]float64 {
	dst := make(map[int]float64, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
