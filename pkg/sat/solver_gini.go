package sat

import (
	"context"
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
)

// Interval between two checks of a background solve
const pollInterval = 5 * time.Millisecond

type giniSolver struct{}

// NewGiniSolver returns an in-process CDCL solver. Every call to Solve owns a fresh solver
// instance, so no state survives between solves.
func NewGiniSolver() SATSolver {
	return &giniSolver{}
}

func (solver *giniSolver) Solve(ctx context.Context, sat SAT) (SATSolution, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrUndecided
	}

	g := gini.New()
	for _, clause := range sat.Clauses {
		for _, literal := range clause {
			lit, err := toLit(literal, sat.Variables)
			if err != nil {
				return nil, err
			}
			g.Add(lit)
		}
		g.Add(z.LitNull) // Terminate clause
	}

	var result int
	if ctx.Done() == nil {
		result = g.Solve()
	} else {
		result = wait(ctx, g.GoSolve())
	}

	// Result of 1 stands for satisfiable, -1 for unsatisfiable and 0 for undecided
	switch result {
	case 1:
		solution := make(SATSolution, 0, sat.Variables)
		maxVar := g.MaxVar()
		for variable := uint64(1); variable <= sat.Variables; variable++ {
			// Variables absent from every clause are unconstrained and left false
			if z.Var(variable) <= maxVar && g.Value(z.Var(variable).Pos()) {
				solution = append(solution, int64(variable))
			} else {
				solution = append(solution, -int64(variable))
			}
		}
		return solution, nil
	case -1:
		return nil, nil
	default:
		return nil, ErrUndecided
	}
}

// wait polls the background solve until it yields a result or the context is done, in which case the solve
// is stopped and reported undecided
func wait(ctx context.Context, solve inter.Solve) int {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if result, done := solve.Test(); done {
			return result
		}
		select {
		case <-ctx.Done():
			solve.Stop()
			return 0
		case <-ticker.C:
		}
	}
}

func toLit(literal int64, variables uint64) (z.Lit, error) {
	variable := literal
	if variable < 0 {
		variable = -variable
	}
	if variable == 0 || uint64(variable) > variables {
		return z.LitNull, fmt.Errorf("literal %d is out of range [1, %d]", literal, variables)
	}
	if literal < 0 {
		return z.Var(variable).Neg(), nil
	}
	return z.Var(variable).Pos(), nil
}
