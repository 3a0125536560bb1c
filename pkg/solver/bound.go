package solver

import (
	"cmp"
	"slices"

	"github.com/limaJavier/timetabler/pkg/constraint"
	"github.com/samber/lo"
)

// bounder computes the optimistic bound of a search node. Besides the best live candidate of every undecided
// requirement it accounts for capacity: the pairs of a class (or a teacher) need distinct periods, and a
// period cannot host more lessons than it has free classes, teachers and rooms. The bound is the smallest
// of the class, teacher and global relaxations. Scratch space is reused between nodes, so one bounder
// serves one search.
type bounder struct {
	m       *constraint.Model
	order   []int   // Periods by decreasing weight
	weights []int64 // Per period
	stamp   uint32  // Marks equal to stamp belong to the current node

	classes   *entityTally
	teachers  *entityTally
	roomMarks []uint32 // Per (room, period)
	roomsFree []int    // Per period: rooms with a live candidate

	best      []int64 // Per visited requirement: best live weight
	penalties []int64 // Per visited requirement: penalty saved by placing it
}

// entityTally gathers the undecided requirements of every class or every teacher
type entityTally struct {
	marks   []uint32 // Per (entity, period)
	tallies []tally
	touched []int
	free    []int // Per period: entities with a live candidate
}

type tally struct {
	best      []int64
	penalties []int64
	periods   int // Distinct live periods
}

func newBounder(m *constraint.Model) *bounder {
	periods := m.Domain.Periods()
	weights := make([]int64, len(periods))
	for i, period := range periods {
		weights[i] = period.Weight
	}
	order := lo.Range(len(periods))
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(weights[b], weights[a]) })

	return &bounder{
		m:         m,
		order:     order,
		weights:   weights,
		classes:   newEntityTally(m.Classes, m.Periods),
		teachers:  newEntityTally(m.Teachers, m.Periods),
		roomMarks: make([]uint32, m.Rooms*m.Periods),
		roomsFree: make([]int, m.Periods),
	}
}

func newEntityTally(entities, periods int) *entityTally {
	return &entityTally{
		marks:   make([]uint32, entities*periods),
		tallies: make([]tally, entities),
		free:    make([]int, periods),
	}
}

// reset starts a new node
func (b *bounder) reset() {
	b.stamp++
	if b.stamp == 0 {
		clear(b.classes.marks)
		clear(b.teachers.marks)
		clear(b.roomMarks)
		b.stamp = 1
	}
	b.classes.reset()
	b.teachers.reset()
	clear(b.roomsFree)
	b.best, b.penalties = b.best[:0], b.penalties[:0]
}

// visit accounts for the live candidates of an undecided requirement and returns how many there are
func (b *bounder) visit(state *searchState, requirement int, candidates []int) int {
	count := 0
	var top int64
	for _, variable := range candidates {
		if !state.live(variable) {
			continue
		}
		count++
		v := b.m.Variables[variable]
		top = max(top, v.Weight)
		b.classes.mark(v.Class, v.Period, b.m.Periods, b.stamp)
		b.teachers.mark(v.Teacher, v.Period, b.m.Periods, b.stamp)
		if i := v.Room*b.m.Periods + v.Period; b.roomMarks[i] != b.stamp {
			b.roomMarks[i] = b.stamp
			b.roomsFree[v.Period]++
		}
	}
	if count == 0 {
		return 0
	}

	r := b.m.Requirements[requirement]
	b.classes.add(r.Class, top, r.Penalty)
	b.teachers.add(r.Teacher, top, r.Penalty)
	b.best = append(b.best, top)
	b.penalties = append(b.penalties, r.Penalty)
	return count
}

// finish returns the bound of the node whose placed value is base. It reports false when the visited
// requirements cannot all be placed, which only prunes in strict mode.
func (b *bounder) finish(base int64) (int64, bool) {
	strict := b.m.Mode == constraint.Strict

	classes, ok := b.classes.bound(b, strict)
	if !ok {
		return 0, false
	}
	teachers, ok := b.teachers.bound(b, strict)
	if !ok {
		return 0, false
	}

	//** Global capacity
	n := len(b.best)
	placed := 0
	var spread int64
	for _, period := range b.order {
		if placed == n {
			break
		}
		take := min(b.classes.free[period], b.teachers.free[period], b.roomsFree[period], n-placed)
		spread += int64(take) * b.weights[period]
		placed += take
	}
	if strict && placed < n {
		return 0, false
	}
	global := min(topSum(b.best, placed), spread) + topSum(b.penalties, placed)

	return base + min(classes, teachers, global), true
}

func (tallies *entityTally) reset() {
	for _, entity := range tallies.touched {
		t := &tallies.tallies[entity]
		t.best, t.penalties, t.periods = t.best[:0], t.penalties[:0], 0
	}
	tallies.touched = tallies.touched[:0]
	clear(tallies.free)
}

func (tallies *entityTally) mark(entity, period, periods int, stamp uint32) {
	if i := entity*periods + period; tallies.marks[i] != stamp {
		tallies.marks[i] = stamp
		tallies.tallies[entity].periods++
		tallies.free[period]++
	}
}

func (tallies *entityTally) add(entity int, best, penalty int64) {
	t := &tallies.tallies[entity]
	if len(t.best) == 0 {
		tallies.touched = append(tallies.touched, entity)
	}
	t.best = append(t.best, best)
	t.penalties = append(t.penalties, penalty)
}

// bound sums, over the touched entities, what their requirements can gain in distinct periods
func (tallies *entityTally) bound(b *bounder, strict bool) (int64, bool) {
	var total int64
	for _, entity := range tallies.touched {
		t := &tallies.tallies[entity]
		if strict && t.periods < len(t.best) {
			return 0, false
		}
		k := min(len(t.best), t.periods)

		var spread int64
		taken := 0
		for _, period := range b.order {
			if taken == k {
				break
			}
			if tallies.marks[entity*b.m.Periods+period] == b.stamp {
				spread += b.weights[period]
				taken++
			}
		}
		total += min(topSum(t.best, k), spread) + topSum(t.penalties, k)
	}
	return total, true
}

// topSum sums the k largest values, reordering them in place
func topSum(values []int64, k int) int64 {
	slices.SortFunc(values, func(a, b int64) int { return cmp.Compare(b, a) })
	return lo.Sum(values[:min(k, len(values))])
}
