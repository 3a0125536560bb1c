package sat

import (
	"context"
	"errors"
)

// ErrUndecided is returned when the solver could neither satisfy nor refute the formula
// before the context deadline
var ErrUndecided = errors.New("sat: undecided within the time budget")

type SATSolver interface {
	// Solve returns a satisfying assignment, or a nil solution and a nil error when the formula is unsatisfiable
	Solve(ctx context.Context, sat SAT) (SATSolution, error)
}
