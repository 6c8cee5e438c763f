package solver

import (
	"context"
	"math"
	"time"
)

type bnbNode struct {
	lower []float64
	upper []float64
}

// runBranchAndBound explores the integrality tree depth-first, solving the
// LP relaxation at every node. The incumbent is the best integral point seen
// so far; nodes whose relaxation cannot beat it within the configured gap
// are pruned.
func (b *Backend) runBranchAndBound(ctx context.Context, deadline time.Time) {
	m := b.model

	root := bnbNode{
		lower: append([]float64(nil), m.ColumnLower...),
		upper: append([]float64(nil), m.ColumnUpper...),
	}
	// Integer columns with fractional bounds can never take the fractional
	// part, so tighten them up front.
	for j, isInt := range m.Integrality {
		if !isInt {
			continue
		}
		root.lower[j] = math.Ceil(root.lower[j] - intTol)
		if !math.IsInf(root.upper[j], 1) {
			root.upper[j] = math.Floor(root.upper[j] + intTol)
		}
	}

	var (
		best    []float64
		bestObj = math.Inf(1)
		nodes   = 0
		timeout = false
	)

	stack := []bnbNode{root}
	for len(stack) > 0 {
		if nodes >= b.opts.NodeLimit || time.Now().After(deadline) || ctx.Err() != nil {
			timeout = true
			break
		}
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		obj, x, st := b.solveRelaxation(node.lower, node.upper)
		nodes++

		switch st {
		case StatusOptimal:
		case StatusInfeasible:
			continue
		case StatusUnbounded:
			if nodes == 1 {
				b.status = StatusUnbounded
				b.info.Iterations = nodes
				return
			}
			continue
		default:
			continue
		}

		if best != nil {
			gap := math.Max(b.opts.MIPAbsGap, b.opts.MIPRelGap*math.Abs(bestObj))
			if obj >= bestObj-gap {
				continue
			}
		}

		branch := b.mostFractional(x)
		if branch < 0 {
			snapIntegers(m, x)
			if obj < bestObj {
				best = x
				bestObj = obj
			}
			continue
		}

		v := x[branch]
		up := bnbNode{
			lower: append([]float64(nil), node.lower...),
			upper: append([]float64(nil), node.upper...),
		}
		down := bnbNode{
			lower: append([]float64(nil), node.lower...),
			upper: append([]float64(nil), node.upper...),
		}
		up.lower[branch] = math.Ceil(v)
		down.upper[branch] = math.Floor(v)
		// Explore the rounded-down child first; serving variables usually
		// settle low in cost-minimizing plans.
		stack = append(stack, up, down)
	}

	b.info.Iterations = nodes
	switch {
	case best != nil && timeout:
		b.status = StatusTimeLimitFeasible
	case best != nil:
		b.status = StatusOptimal
	case timeout:
		// Limits hit before any integral point was found. TimeLimitFeasible
		// promises a usable Solution, so it must not be claimed here.
		b.status = StatusNotSet
	default:
		b.status = StatusInfeasible
	}
	if best != nil {
		b.info.ObjectiveValue = b.reportObjective(best)
		// Duals are not meaningful for integer models.
		b.sol = &Solution{ColumnValues: best}
	}
}

// mostFractional returns the integer column furthest from an integral value,
// or -1 when the point is integral.
func (b *Backend) mostFractional(x []float64) int {
	bestCol := -1
	bestDist := intTol
	for j, isInt := range b.model.Integrality {
		if !isInt {
			continue
		}
		dist := math.Abs(x[j] - math.Round(x[j]))
		if dist > bestDist {
			bestDist = dist
			bestCol = j
		}
	}
	return bestCol
}

func snapIntegers(m *Model, x []float64) {
	for j, isInt := range m.Integrality {
		if isInt {
			x[j] = math.Round(x[j])
		}
	}
}
