package solver

import (
	"cmp"
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"sync/atomic"

	"github.com/limaJavier/timetabler/pkg/constraint"
	"github.com/samber/lo"
)

// sharedIncumbent is the only state shared between workers: the best value any of them has reached
type sharedIncumbent struct {
	value atomic.Int64
}

func newSharedIncumbent() *sharedIncumbent {
	shared := &sharedIncumbent{}
	shared.value.Store(math.MinInt64)
	return shared
}

func (shared *sharedIncumbent) publish(value int64) {
	for {
		current := shared.value.Load()
		if current >= value || shared.value.CompareAndSwap(current, value) {
			return
		}
	}
}

// dominates reports whether a subtree bounded by bound cannot improve on the shared incumbent
func (shared *sharedIncumbent) dominates(bound int64) bool {
	return bound <= shared.value.Load()
}

// newWorker prepares the search of the given portfolio member. Worker 0 is canonical: candidates by
// decreasing value then increasing key, requirements by index. The others break every tie with their own
// seeded generator so that they explore the tree in a different order.
func newWorker(m *constraint.Model, id int, shared *sharedIncumbent) *worker {
	w := &worker{
		state:      newSearchState(m),
		bounder:    newBounder(m),
		shared:     shared,
		candidates: make([][]int, len(m.Requirements)),
		priority:   lo.Range(len(m.Requirements)),
	}

	var rng *rand.Rand
	if id > 0 {
		rng = rand.New(rand.NewPCG(uint64(id), uint64(len(m.Variables))))
		rng.Shuffle(len(w.priority), func(i, j int) { w.priority[i], w.priority[j] = w.priority[j], w.priority[i] })
	}

	for i, requirement := range m.Requirements {
		candidates := slices.Clone(requirement.Variables)
		if rng != nil {
			rng.Shuffle(len(candidates), func(a, b int) { candidates[a], candidates[b] = candidates[b], candidates[a] })
			slices.SortStableFunc(candidates, func(a, b int) int { return cmp.Compare(m.Value(b), m.Value(a)) })
		} else {
			slices.SortStableFunc(candidates, func(a, b int) int {
				return cmp.Or(cmp.Compare(m.Value(b), m.Value(a)), compareKeys(m, a, b))
			})
		}
		w.candidates[i] = candidates
	}
	return w
}

type workerResult struct {
	solution []int
	value    int64
	found    bool
	proven   bool // The worker exhausted its tree
	nodes    uint64
}

type portfolioResult struct {
	solution []int // nil when no incumbent exists
	value    int64
	proven   bool
	nodes    uint64
}

// runPortfolio races the workers on the model. It returns when one of them exhausts its tree, which proves
// the best shared value optimal, or when the context expires. The warm start, if any, seeds the shared
// incumbent and competes in the final selection.
func runPortfolio(ctx context.Context, m *constraint.Model, workers int, warm []int) portfolioResult {
	shared := newSharedIncumbent()
	if warm != nil {
		shared.publish(value(m, warm))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Execute workers on different goroutines
	resultsChannel := make(chan workerResult)
	for id := range workers {
		go func(id int) {
			w := newWorker(m, id, shared)
			err := w.search(ctx)
			if err == nil {
				cancel() // Proof reached, stop the others
			}
			resultsChannel <- workerResult{
				solution: w.best,
				value:    w.bestValue,
				found:    w.found,
				proven:   err == nil,
				nodes:    w.state.nodes,
			}
		}(id)
	}

	// Join every worker
	results := make([]workerResult, 0, workers+1)
	for range workers {
		results = append(results, <-resultsChannel)
	}
	close(resultsChannel)

	if warm != nil {
		results = append(results, workerResult{solution: warm, value: value(m, warm), found: true})
	}

	//** Select the best incumbent
	order := tieBreakOrder(m)
	outcome := portfolioResult{}
	for _, result := range results {
		outcome.nodes += result.nodes
		outcome.proven = outcome.proven || result.proven
		if !result.found {
			continue
		}
		if outcome.solution == nil || result.value > outcome.value ||
			(result.value == outcome.value && compareSolutions(m, order, result.solution, outcome.solution) < 0) {
			outcome.solution, outcome.value = result.solution, result.value
		}
	}
	return outcome
}
