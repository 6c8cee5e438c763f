package optimizer

import "errors"

// Sentinel errors separating request faults from build faults. Solver
// infeasibility is not an error: it is reported through the response status.
var (
	// ErrValidation marks a malformed or physically inconsistent request.
	// It is raised before any model is built and is never retried.
	ErrValidation = errors.New("invalid meal plan request")

	// ErrEmptyCandidateSet means every recipe was removed by hard filters.
	// Distinct from solver infeasibility: no model was ever constructed.
	ErrEmptyCandidateSet = errors.New("no recipes available after applying filters")
)
