package solver

// Status is the model status vocabulary reported by a backend. The numbering
// follows the HiGHS model status enumeration so a native backend can pass its
// codes through unchanged.
type Status int

const (
	StatusNotSet Status = iota
	StatusLoadError
	StatusModelError
	StatusPresolveError
	StatusSolveError
	StatusPostsolveError
	StatusTimeLimitFeasible
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusUnboundedOrInfeasible
	StatusModelEmpty
	StatusPrimalFeasible
	StatusDualFeasible
	StatusPresolved
	StatusPostsolved
)

var statusNames = map[Status]string{
	StatusNotSet:                "notset",
	StatusLoadError:             "load_error",
	StatusModelError:            "model_error",
	StatusPresolveError:         "presolve_error",
	StatusSolveError:            "solve_error",
	StatusPostsolveError:        "postsolve_error",
	StatusTimeLimitFeasible:     "timelimit_feasible",
	StatusOptimal:               "optimal",
	StatusInfeasible:            "infeasible",
	StatusUnbounded:             "unbounded",
	StatusUnboundedOrInfeasible: "unbounded_or_infeasible",
	StatusModelEmpty:            "model_empty",
	StatusPrimalFeasible:        "primal_feasible",
	StatusDualFeasible:          "dual_feasible",
	StatusPresolved:             "presolved",
	StatusPostsolved:            "postsolved",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}
