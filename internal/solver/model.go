package solver

import (
	"errors"
	"fmt"
	"math"
)

// Model is a matrix-form LP/MIP in compressed sparse row layout. Rows are
// two-sided inequalities RowLower[i] <= sum(coeff*col) <= RowUpper[i].
// Column indices must be strictly ascending within each row.
type Model struct {
	ColumnCount int
	ColumnLower []float64
	ColumnUpper []float64
	Integrality []bool

	RowCount int
	RowLower []float64
	RowUpper []float64

	// CSR weights: Offsets has RowCount+1 entries, Indices and Values have
	// one entry per non-zero coefficient.
	Offsets []int
	Indices []int
	Values  []float64

	Objective []float64
	Maximize  bool
}

// ErrMalformedModel reports a model that violates the CSR invariants.
var ErrMalformedModel = errors.New("malformed model")

// HasIntegrality reports whether any column is integer-constrained.
func (m *Model) HasIntegrality() bool {
	for _, isInt := range m.Integrality {
		if isInt {
			return true
		}
	}
	return false
}

// NonZeroCount returns the number of stored coefficients.
func (m *Model) NonZeroCount() int {
	return len(m.Values)
}

// Validate checks array lengths, offset monotonicity and per-row column
// ordering before the model is handed to a numerical backend.
func (m *Model) Validate() error {
	if len(m.ColumnLower) != m.ColumnCount || len(m.ColumnUpper) != m.ColumnCount ||
		len(m.Integrality) != m.ColumnCount || len(m.Objective) != m.ColumnCount {
		return fmt.Errorf("%w: column array length mismatch", ErrMalformedModel)
	}
	if len(m.RowLower) != m.RowCount || len(m.RowUpper) != m.RowCount {
		return fmt.Errorf("%w: row array length mismatch", ErrMalformedModel)
	}
	if len(m.Offsets) != m.RowCount+1 {
		return fmt.Errorf("%w: offsets length %d, want %d", ErrMalformedModel, len(m.Offsets), m.RowCount+1)
	}
	if len(m.Indices) != len(m.Values) {
		return fmt.Errorf("%w: indices/values length mismatch", ErrMalformedModel)
	}
	if m.Offsets[0] != 0 || m.Offsets[m.RowCount] != len(m.Values) {
		return fmt.Errorf("%w: offsets do not span the non-zero arrays", ErrMalformedModel)
	}
	for i := 0; i < m.RowCount; i++ {
		start, end := m.Offsets[i], m.Offsets[i+1]
		if start > end {
			return fmt.Errorf("%w: row %d has negative extent", ErrMalformedModel, i)
		}
		prev := -1
		for k := start; k < end; k++ {
			col := m.Indices[k]
			if col <= prev {
				return fmt.Errorf("%w: row %d columns not strictly ascending", ErrMalformedModel, i)
			}
			if col < 0 || col >= m.ColumnCount {
				return fmt.Errorf("%w: row %d references column %d", ErrMalformedModel, i, col)
			}
			prev = col
		}
	}
	for j := 0; j < m.ColumnCount; j++ {
		if math.IsInf(m.ColumnLower[j], -1) {
			return fmt.Errorf("%w: column %d has no lower bound", ErrMalformedModel, j)
		}
		if m.ColumnLower[j] > m.ColumnUpper[j] {
			return fmt.Errorf("%w: column %d has crossed bounds", ErrMalformedModel, j)
		}
	}
	return nil
}

// rowActivity computes a_i . x for row i.
func (m *Model) rowActivity(i int, x []float64) float64 {
	sum := 0.0
	for k := m.Offsets[i]; k < m.Offsets[i+1]; k++ {
		sum += m.Values[k] * x[m.Indices[k]]
	}
	return sum
}

// Solution is the raw output of a solve. RowDuals is empty for models with
// integer columns, where duals are not meaningful.
type Solution struct {
	ColumnValues []float64
	RowDuals     []float64
}

// Info carries solve diagnostics. Iterations counts relaxation solves: one
// for a pure LP, one per branch-and-bound node otherwise.
type Info struct {
	Iterations     int
	ObjectiveValue float64
}
