package constraint

import (
	"github.com/limaJavier/timetabler/pkg/sat"
)

type indexedClauses struct {
	index   int
	clauses [][]int64
}

// ToSAT encodes the feasibility part of a strict model as CNF: variable i of the arena is SAT variable
// i+1. Objective weights are not encoded; the formula is satisfiable if and only if a strict schedule exists.
func ToSAT(m *Model) sat.SAT {
	// Constraints functions
	constraints := []func(m *Model) [][]int64{
		completenessConstraints,
		uniquenessConstraints,
		conflictConstraints,
	}

	satInstance := sat.SAT{
		Variables: uint64(len(m.Variables)),
		Clauses:   [][]int64{},
	}

	// Execute constraints functions on different goroutines to improve performance
	constraintsChannel := make(chan indexedClauses)
	for i, constraint := range constraints {
		go func(i int, constraint func(m *Model) [][]int64) {
			constraintsChannel <- indexedClauses{index: i, clauses: constraint(m)}
		}(i, constraint)
	}

	// Collect generated constraints, keeping declaration order so that the formula is reproducible
	collected := make([][][]int64, len(constraints))
	for range constraints {
		result := <-constraintsChannel
		collected[result.index] = result.clauses
	}
	close(constraintsChannel)

	for _, clauses := range collected {
		satInstance.Clauses = append(satInstance.Clauses, clauses...)
	}
	return satInstance
}

// Every pair is taught at least once
func completenessConstraints(m *Model) [][]int64 {
	clauses := make([][]int64, 0, len(m.Requirements))
	for _, requirement := range m.Requirements {
		clause := make([]int64, 0, len(requirement.Variables))
		for _, variable := range requirement.Variables {
			clause = append(clause, literal(variable))
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

// Every pair is taught at most once
func uniquenessConstraints(m *Model) [][]int64 {
	clauses := make([][]int64, 0)
	for _, requirement := range m.Requirements {
		clauses = append(clauses, atMostOne(requirement.Variables)...)
	}
	return clauses
}

// No two lessons share a class, a teacher or a room in the same period
func conflictConstraints(m *Model) [][]int64 {
	clauses := make([][]int64, 0)
	for _, group := range m.Groups {
		clauses = append(clauses, atMostOne(group.Variables)...)
	}
	return clauses
}

// Pairwise at-most-one encoding
func atMostOne(variables []int) [][]int64 {
	clauses := make([][]int64, 0, len(variables)*(len(variables)-1)/2)
	for i := range len(variables) - 1 {
		for j := i + 1; j < len(variables); j++ {
			clauses = append(clauses, []int64{-literal(variables[i]), -literal(variables[j])})
		}
	}
	return clauses
}

func literal(variable int) int64 {
	return int64(variable) + 1
}
