package solver

import (
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const backendVersion = "gonum-simplex-bnb/0.17"

// intTol is the tolerance under which a relaxation value counts as integral.
const intTol = 1e-6

// Backend solves models with gonum's simplex implementation. Continuous
// models are solved directly; integer-constrained models are driven through
// a bounded branch-and-bound loop around the LP relaxation.
type Backend struct {
	opts   Options
	model  *Model
	sense  float64
	status Status
	sol    *Solution
	info   Info
}

// NewBackend returns an Adapter backed by gonum.
func NewBackend(opts Options) Adapter {
	return &Backend{opts: opts, status: StatusNotSet}
}

func (b *Backend) PassModel(m *Model) error {
	if err := m.Validate(); err != nil {
		b.status = StatusModelError
		return err
	}
	b.model = m
	b.sense = 1
	if m.Maximize {
		b.sense = -1
	}
	return nil
}

func (b *Backend) ModelStatus() Status { return b.status }
func (b *Backend) Solution() *Solution { return b.sol }
func (b *Backend) Info() *Info         { return &b.info }
func (b *Backend) Version() string     { return backendVersion }

func (b *Backend) Run(ctx context.Context) error {
	if b.model == nil {
		b.status = StatusLoadError
		return errors.New("no model passed to backend")
	}
	if b.model.ColumnCount == 0 || b.model.RowCount == 0 {
		b.status = StatusModelEmpty
		return nil
	}

	deadline := time.Now().Add(b.opts.TimeLimit)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if !b.model.HasIntegrality() {
		b.runContinuous()
		return nil
	}
	b.runBranchAndBound(ctx, deadline)
	return nil
}

func (b *Backend) runContinuous() {
	obj, x, st := b.solveRelaxation(b.model.ColumnLower, b.model.ColumnUpper)
	b.info.Iterations = 1
	b.status = st
	if st != StatusOptimal {
		return
	}
	b.info.ObjectiveValue = b.sense * obj
	b.sol = &Solution{
		ColumnValues: x,
		RowDuals:     b.recoverDuals(x),
	}
}

// minimizedObjective is the internal objective, negated for maximization so
// the backend always minimizes.
func (b *Backend) minimizedObjective() []float64 {
	c := make([]float64, b.model.ColumnCount)
	for j, v := range b.model.Objective {
		c[j] = b.sense * v
	}
	return c
}

// solveRelaxation solves the continuous relaxation of the model under the
// given column bounds. It converts the two-sided CSR form into the standard
// form min c'x s.t. Ax = b, x >= 0 consumed by lp.Simplex: columns are
// shifted by their lower bound, each finite row side gets its own equality
// with a non-negative slack, and finite column ranges become slacked rows.
func (b *Backend) solveRelaxation(lower, upper []float64) (float64, []float64, Status) {
	m := b.model
	n := m.ColumnCount
	c := b.minimizedObjective()

	type stdRow struct {
		cols      []int
		vals      []float64
		rhs       float64
		slackSign float64
	}
	var rows []stdRow

	for i := 0; i < m.RowCount; i++ {
		start, end := m.Offsets[i], m.Offsets[i+1]
		cols := m.Indices[start:end]
		vals := m.Values[start:end]

		shift := 0.0
		for k, col := range cols {
			shift += vals[k] * lower[col]
		}
		lo, hi := m.RowLower[i], m.RowUpper[i]
		loFinite := !math.IsInf(lo, -1)
		hiFinite := !math.IsInf(hi, 1)

		switch {
		case loFinite && hiFinite && math.Abs(hi-lo) <= 1e-12:
			rows = append(rows, stdRow{cols, vals, lo - shift, 0})
		default:
			if hiFinite {
				rows = append(rows, stdRow{cols, vals, hi - shift, 1})
			}
			if loFinite {
				rows = append(rows, stdRow{cols, vals, lo - shift, -1})
			}
		}
	}
	for j := 0; j < n; j++ {
		if span := upper[j] - lower[j]; !math.IsInf(span, 1) {
			rows = append(rows, stdRow{[]int{j}, []float64{1}, span, 1})
		}
	}

	slackCount := 0
	for _, r := range rows {
		if r.slackSign != 0 {
			slackCount++
		}
	}
	total := n + slackCount

	a := mat.NewDense(len(rows), total, nil)
	rhs := make([]float64, len(rows))
	cStd := make([]float64, total)
	copy(cStd, c)

	slackCol := n
	for i, r := range rows {
		for k, col := range r.cols {
			a.Set(i, col, r.vals[k])
		}
		if r.slackSign != 0 {
			a.Set(i, slackCol, r.slackSign)
			slackCol++
		}
		rhs[i] = r.rhs
	}

	optF, optX, err := lp.Simplex(cStd, a, rhs, b.opts.PrimalFeasibilityTol, nil)
	switch {
	case err == nil:
	case errors.Is(err, lp.ErrInfeasible):
		return 0, nil, StatusInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return 0, nil, StatusUnbounded
	default:
		return 0, nil, StatusSolveError
	}

	x := make([]float64, n)
	for j := 0; j < n; j++ {
		x[j] = optX[j] + lower[j]
	}
	// Add back the contribution of the shifted lower bounds.
	obj := optF
	for j := 0; j < n; j++ {
		obj += c[j] * lower[j]
	}
	return obj, x, StatusOptimal
}

// reportObjective recomputes the caller-facing objective from the point, so
// maximization models report the unnegated value.
func (b *Backend) reportObjective(x []float64) float64 {
	sum := 0.0
	for j, v := range b.model.Objective {
		sum += v * x[j]
	}
	return sum
}
