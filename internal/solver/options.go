package solver

import "time"

// Options mirror the solver controls the engine exposes. Unknown backends may
// ignore controls they have no equivalent for.
type Options struct {
	Presolve             string
	Parallel             string
	PrimalFeasibilityTol float64
	DualFeasibilityTol   float64
	MIPAbsGap            float64
	MIPRelGap            float64
	TimeLimit            time.Duration
	NodeLimit            int
	LogToConsole         bool
}

// DefaultOptions returns the options used when the caller supplies none.
func DefaultOptions() Options {
	return Options{
		Presolve:             "on",
		Parallel:             "choose",
		PrimalFeasibilityTol: 1e-7,
		DualFeasibilityTol:   1e-7,
		MIPAbsGap:            1e-6,
		MIPRelGap:            1e-5,
		TimeLimit:            3 * time.Second,
		NodeLimit:            50000,
	}
}

// Tune adjusts options to the shape of the model about to be solved. Large
// binary models get a looser relative gap so the branch-and-bound loop
// terminates inside the time limit.
func (o Options) Tune(m *Model) Options {
	integerCols := 0
	for _, isInt := range m.Integrality {
		if isInt {
			integerCols++
		}
	}
	if integerCols > 500 {
		o.MIPRelGap = 1e-3
	}
	if integerCols > 2000 {
		o.MIPRelGap = 1e-2
	}
	return o
}
