package solver

import "context"

// Adapter is the narrow boundary between the optimization engine and a
// numerical LP/MIP backend. Any backend can be substituted without touching
// the model builder or the interpreter.
type Adapter interface {
	// PassModel hands a fully built, immutable model to the backend.
	PassModel(m *Model) error
	// Run solves the model. It returns an error only for backend faults;
	// infeasibility and limit hits are reported through ModelStatus.
	Run(ctx context.Context) error
	ModelStatus() Status
	// Solution is valid for statuses that carry a usable point
	// (optimal, timelimit_feasible); it returns nil otherwise.
	Solution() *Solution
	Info() *Info
	Version() string
}

// Factory builds a fresh adapter per solve. A model is passed once, solved
// once and discarded, so adapters are never reused.
type Factory func(opts Options) Adapter
