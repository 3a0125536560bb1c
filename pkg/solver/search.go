package solver

import (
	"context"
	"errors"
	"slices"

	"github.com/limaJavier/timetabler/pkg/constraint"
)

const (
	unassigned = -1
	unmet      = -2

	// Nodes expanded between two deadline checks
	checkInterval = 64
)

// errSearchTimeout is an internal signal: it is absorbed into phase transitions and never surfaced as a failure
var errSearchTimeout = errors.New("search budget exhausted")

// searchState is the private search-tree state of one worker. Occupancy is tracked per (entity, period)
// so that checking a candidate against the conflict constraints is constant time.
type searchState struct {
	m           *constraint.Model
	classBusy   []bool
	teacherBusy []bool
	roomBusy    []bool
	choice      []int // Per requirement: arena index, unassigned or unmet
	value       int64 // Sum of the values of the placed variables
	nodes       uint64
}

func newSearchState(m *constraint.Model) *searchState {
	choice := make([]int, len(m.Requirements))
	for i := range choice {
		choice[i] = unassigned
	}
	return &searchState{
		m:           m,
		classBusy:   make([]bool, m.Classes*m.Periods),
		teacherBusy: make([]bool, m.Teachers*m.Periods),
		roomBusy:    make([]bool, m.Rooms*m.Periods),
		choice:      choice,
	}
}

// tick accounts for a node expansion and checks the deadline at bounded intervals
func (state *searchState) tick(ctx context.Context) error {
	state.nodes++
	if state.nodes%checkInterval == 0 && ctx.Err() != nil {
		return errSearchTimeout
	}
	return nil
}

// live reports whether the variable can still be set without breaking a conflict constraint
func (state *searchState) live(variable int) bool {
	v := state.m.Variables[variable]
	periods := state.m.Periods
	return !state.classBusy[v.Class*periods+v.Period] &&
		!state.teacherBusy[v.Teacher*periods+v.Period] &&
		!state.roomBusy[v.Room*periods+v.Period]
}

func (state *searchState) occupy(variable int, busy bool) {
	v := state.m.Variables[variable]
	periods := state.m.Periods
	state.classBusy[v.Class*periods+v.Period] = busy
	state.teacherBusy[v.Teacher*periods+v.Period] = busy
	state.roomBusy[v.Room*periods+v.Period] = busy
}

func (state *searchState) place(requirement, variable int) {
	state.occupy(variable, true)
	state.choice[requirement] = variable
	state.value += state.m.Value(variable)
}

func (state *searchState) remove(requirement, variable int) {
	state.occupy(variable, false)
	state.choice[requirement] = unassigned
	state.value -= state.m.Value(variable)
}

// solution returns a copy of the current choices where every undecided requirement is unmet
func (state *searchState) solution() []int {
	solution := slices.Clone(state.choice)
	for i, choice := range solution {
		if choice == unassigned {
			solution[i] = unmet
		}
	}
	return solution
}

// worker runs a depth-first branch-and-bound. At every node it forward-checks the undecided requirements,
// computes an optimistic bound (see bounder) and branches on the requirement with the fewest live candidates.
type worker struct {
	state      *searchState
	bounder    *bounder
	shared     *sharedIncumbent
	candidates [][]int // Per requirement, in the order they are tried
	priority   []int   // Per requirement, breaks ties between equally constrained requirements

	best      []int
	bestValue int64
	found     bool
}

func (w *worker) search(ctx context.Context) error {
	if err := w.state.tick(ctx); err != nil {
		return err
	}

	//** Select
	m := w.state.m
	next, bestCount := -1, 0
	w.bounder.reset()
	for requirement, choice := range w.state.choice {
		if choice != unassigned {
			continue
		}
		count := w.bounder.visit(w.state, requirement, w.candidates[requirement])
		if count == 0 {
			if m.Mode == constraint.Strict {
				return nil // Dead end
			}
			continue // Unmet for the rest of this branch
		}
		if next == -1 || count < bestCount || (count == bestCount && w.priority[requirement] < w.priority[next]) {
			next, bestCount = requirement, count
		}
	}

	//** Leaf
	if next == -1 {
		if !w.found || w.state.value > w.bestValue {
			w.best, w.bestValue, w.found = w.state.solution(), w.state.value, true
			w.shared.publish(w.state.value)
		}
		return nil
	}

	//** Prune
	bound, feasible := w.bounder.finish(w.state.value)
	if !feasible {
		return nil
	}
	if (w.found && bound <= w.bestValue) || w.shared.dominates(bound) {
		return nil
	}

	//** Branch
	for _, variable := range w.candidates[next] {
		if !w.state.live(variable) {
			continue
		}
		w.state.place(next, variable)
		err := w.search(ctx)
		w.state.remove(next, variable)
		if err != nil {
			return err
		}
	}
	if m.Mode == constraint.Relaxed {
		w.state.choice[next] = unmet
		err := w.search(ctx)
		w.state.choice[next] = unassigned
		if err != nil {
			return err
		}
	}
	return nil
}

// canonicalize returns the solution reaching target that is smallest under the tie-break order. Requirements
// are decided in tie-break order and candidates tried by ascending key with "unmet" last, so the first leaf
// whose value reaches the target is the smallest one. Target must be the proven optimum of the model.
func canonicalize(ctx context.Context, m *constraint.Model, target int64) ([]int, uint64, error) {
	order := tieBreakOrder(m)
	candidates := make([][]int, len(m.Requirements))
	for i, requirement := range m.Requirements {
		candidates[i] = slices.Clone(requirement.Variables)
		slices.SortStableFunc(candidates[i], func(a, b int) int { return compareKeys(m, a, b) })
	}

	state := newSearchState(m)
	bounder := newBounder(m)
	var found []int
	var descend func(depth int) (bool, error)
	descend = func(depth int) (bool, error) {
		if err := state.tick(ctx); err != nil {
			return false, err
		}

		bounder.reset()
		for _, requirement := range order[depth:] {
			if bounder.visit(state, requirement, candidates[requirement]) == 0 && m.Mode == constraint.Strict {
				return false, nil
			}
		}
		bound, feasible := bounder.finish(state.value)
		if !feasible || bound < target {
			return false, nil
		}
		if depth == len(order) {
			found = state.solution()
			return true, nil
		}

		requirement := order[depth]
		for _, variable := range candidates[requirement] {
			if !state.live(variable) {
				continue
			}
			state.place(requirement, variable)
			ok, err := descend(depth + 1)
			state.remove(requirement, variable)
			if ok || err != nil {
				return ok, err
			}
		}
		if m.Mode == constraint.Relaxed {
			state.choice[requirement] = unmet
			ok, err := descend(depth + 1)
			state.choice[requirement] = unassigned
			if ok || err != nil {
				return ok, err
			}
		}
		return false, nil
	}

	if _, err := descend(0); err != nil {
		return nil, state.nodes, err
	}
	return found, state.nodes, nil
}

// value sums the values of the variables chosen by a solution
func value(m *constraint.Model, solution []int) int64 {
	var total int64
	for _, choice := range solution {
		if choice >= 0 {
			total += m.Value(choice)
		}
	}
	return total
}
