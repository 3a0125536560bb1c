package solver

import (
	"time"

	"github.com/limaJavier/timetabler/pkg/sat"
)

const DefaultBudget = 60 * time.Second

type Options struct {
	StrictBudget      time.Duration // Upper bound of the strict phase, SAT pre-check included
	RelaxedBudget     time.Duration // Upper bound of the relaxed phase
	PenaltyMultiplier float64
	Workers           int  // Parallel searches per phase, at least one
	RelaxOnModelError bool // Go straight to the relaxed phase when the strict model cannot be built

	// SATSolver decides strict feasibility before branch-and-bound. Defaults to the in-process gini solver
	SATSolver sat.SATSolver
}

func (options Options) withDefaults() Options {
	if options.StrictBudget <= 0 {
		options.StrictBudget = DefaultBudget
	}
	if options.RelaxedBudget <= 0 {
		options.RelaxedBudget = DefaultBudget
	}
	if options.PenaltyMultiplier <= 0 {
		options.PenaltyMultiplier = 1
	}
	if options.Workers <= 0 {
		options.Workers = 1
	}
	if options.SATSolver == nil {
		options.SATSolver = sat.NewGiniSolver()
	}
	return options
}
