package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// dualActiveTol decides whether a row or column sits on one of its bounds.
const dualActiveTol = 1e-6

// recoverDuals reconstructs row dual values from an optimal point of a
// continuous model. At optimality the objective gradient is a combination of
// the active constraint normals and active column bounds (stationarity), so
// the multipliers fall out of a least-squares solve over the active set.
// Inactive rows get a zero dual. On any numerical failure all duals are
// reported as zero rather than failing the solve.
func (b *Backend) recoverDuals(x []float64) []float64 {
	m := b.model
	duals := make([]float64, m.RowCount)

	var activeRows []int
	for i := 0; i < m.RowCount; i++ {
		activity := m.rowActivity(i, x)
		if onBound(activity, m.RowLower[i]) || onBound(activity, m.RowUpper[i]) {
			activeRows = append(activeRows, i)
		}
	}
	var activeCols []int
	for j := 0; j < m.ColumnCount; j++ {
		if onBound(x[j], m.ColumnLower[j]) || onBound(x[j], m.ColumnUpper[j]) {
			activeCols = append(activeCols, j)
		}
	}

	k := len(activeRows) + len(activeCols)
	if k == 0 {
		return duals
	}

	a := mat.NewDense(m.ColumnCount, k, nil)
	for t, i := range activeRows {
		for p := m.Offsets[i]; p < m.Offsets[i+1]; p++ {
			a.Set(m.Indices[p], t, m.Values[p])
		}
	}
	for t, j := range activeCols {
		a.Set(j, len(activeRows)+t, 1)
	}

	c := b.minimizedObjective()
	rhs := mat.NewVecDense(m.ColumnCount, c)

	var z mat.VecDense
	if err := z.SolveVec(a, rhs); err != nil {
		return duals
	}
	for t, i := range activeRows {
		v := z.AtVec(t)
		if math.Abs(v) < 1e-12 {
			v = 0
		}
		duals[i] = v
	}
	return duals
}

func onBound(value, bound float64) bool {
	if math.IsInf(bound, 0) {
		return false
	}
	return math.Abs(value-bound) <= dualActiveTol*(1+math.Abs(bound))
}
