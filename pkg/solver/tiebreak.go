package solver

import (
	"cmp"
	"slices"

	"github.com/limaJavier/timetabler/pkg/constraint"
	"github.com/samber/lo"
)

// tieBreakOrder lists the requirements by (course id, class id)
func tieBreakOrder(m *constraint.Model) []int {
	order := lo.Range(len(m.Requirements))
	slices.SortStableFunc(order, func(a, b int) int {
		pairA, pairB := m.Requirements[a].Pair, m.Requirements[b].Pair
		return cmp.Or(cmp.Compare(pairA.Course, pairB.Course), cmp.Compare(pairA.Class, pairB.Class))
	})
	return order
}

// compareKeys orders two variables by (period id, room id)
func compareKeys(m *constraint.Model, a, b int) int {
	periodA, roomA := m.Key(a)
	periodB, roomB := m.Key(b)
	return cmp.Or(cmp.Compare(periodA, periodB), cmp.Compare(roomA, roomB))
}

// compareSolutions orders two equally valued solutions: pairs are compared in tie-break order, the smaller
// (period id, room id) wins and an unmet pair ranks after any scheduled one
func compareSolutions(m *constraint.Model, order []int, a, b []int) int {
	for _, requirement := range order {
		choiceA, choiceB := a[requirement], b[requirement]
		switch {
		case choiceA == choiceB:
			continue
		case choiceA < 0:
			return 1
		case choiceB < 0:
			return -1
		}
		if result := compareKeys(m, choiceA, choiceB); result != 0 {
			return result
		}
	}
	return 0
}
