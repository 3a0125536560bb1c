package sat

import (
	"fmt"
	"strings"
)

// SATSolution holds one signed literal per variable: v when variable v is true, -v otherwise
type SATSolution []int64

// SAT is a CNF formula over variables 1..Variables
type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

// Positives returns the variables set to true by the solution
func (solution SATSolution) Positives() []uint64 {
	positives := make([]uint64, 0, len(solution))
	for _, literal := range solution {
		if literal > 0 {
			positives = append(positives, uint64(literal))
		}
	}
	return positives
}
