package constraint

import (
	"fmt"
	"slices"

	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// Conflict describes a set of requirements that cannot be scheduled simultaneously: at most Schedulable of
// the Required pairs can be given distinct slots.
type Conflict struct {
	Kind        string       `json:"kind"` // "class", "teacher" or "rooms"
	Id          string       `json:"id"`
	Required    int          `json:"required"`
	Schedulable int          `json:"schedulable"`
	Unmatched   []model.Pair `json:"unmatched"`
}

func (conflict Conflict) String() string {
	return fmt.Sprintf("%v %v needs %d slot(s) but only %d can be granted", conflict.Kind, conflict.Id, conflict.Required, conflict.Schedulable)
}

// Diagnose checks necessary conditions of a strict schedule with maximum bipartite matchings: the pairs of
// each class must get distinct periods, the pairs of each teacher must get distinct periods, and all pairs
// must get distinct (room, period) slots. Every violated condition is returned; an empty result does not
// prove feasibility.
func Diagnose(m *Model) ([]Conflict, error) {
	conflicts := make([]Conflict, 0)

	//** Classes
	byClass := lo.GroupBy(lo.Range(len(m.Requirements)), func(requirement int) int { return m.Requirements[requirement].Class })
	for class := range m.Classes {
		conflict, err := matchPeriods(m, "class", m.ids.classes[class], byClass[class])
		if err != nil {
			return nil, err
		} else if conflict != nil {
			conflicts = append(conflicts, *conflict)
		}
	}

	//** Teachers
	byTeacher := lo.GroupBy(lo.Range(len(m.Requirements)), func(requirement int) int { return m.Requirements[requirement].Teacher })
	for teacher := range m.Teachers {
		conflict, err := matchPeriods(m, "teacher", m.ids.teachers[teacher], byTeacher[teacher])
		if err != nil {
			return nil, err
		} else if conflict != nil {
			conflicts = append(conflicts, *conflict)
		}
	}

	//** Rooms
	slots := lo.Uniq(lo.Map(m.Variables, func(variable Variable, _ int) [2]int { return [2]int{variable.Room, variable.Period} }))
	conflict, err := match(m, "rooms", "all", lo.Range(len(m.Requirements)), slots, func(requirement int, slot [2]int) bool {
		return m.Lookup(m.Requirements[requirement].Course, slot[0], slot[1]) >= 0
	})
	if err != nil {
		return nil, err
	} else if conflict != nil {
		conflicts = append(conflicts, *conflict)
	}

	return conflicts, nil
}

func matchPeriods(m *Model, kind, id string, requirements []int) (*Conflict, error) {
	if len(requirements) == 0 {
		return nil, nil
	}
	periods := lo.Range(m.Periods)
	return match(m, kind, id, requirements, periods, func(requirement int, period int) bool {
		return lo.SomeBy(m.Requirements[requirement].Variables, func(variable int) bool {
			return m.Variables[variable].Period == period
		})
	})
}

func match[S comparable](m *Model, kind, id string, requirements []int, slots []S, admissible func(requirement int, slot S) bool) (*Conflict, error) {
	// Build neighbors predicate
	neighbors := func(requirementAny any, slotAny any) (bool, error) {
		return admissible(requirementAny.(int), slotAny.(S)), nil
	}

	// Transform requirements and slots to slices of any
	requirementsAny, slotsAny := lo.Map(requirements, func(requirement int, _ int) any { return requirement }), lo.Map(slots, func(slot S, _ int) any { return slot })

	graph, err := bipartitegraph.NewBipartiteGraph(requirementsAny, slotsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	// Check the matching is a maximum one
	if len(matching) == len(requirements) {
		return nil, nil
	}

	matched := make([]bool, len(requirements))
	for _, edge := range matching {
		matched[edge.Node1] = true
	}
	unmatched := make([]model.Pair, 0)
	for i, requirement := range requirements {
		if !matched[i] {
			unmatched = append(unmatched, m.Requirements[requirement].Pair)
		}
	}
	slices.SortFunc(unmatched, comparePairs)

	return &Conflict{
		Kind:        kind,
		Id:          id,
		Required:    len(requirements),
		Schedulable: len(matching),
		Unmatched:   unmatched,
	}, nil
}

func comparePairs(a, b model.Pair) int {
	if a.Course != b.Course {
		if a.Course < b.Course {
			return -1
		}
		return 1
	}
	if a.Class < b.Class {
		return -1
	} else if a.Class > b.Class {
		return 1
	}
	return 0
}
