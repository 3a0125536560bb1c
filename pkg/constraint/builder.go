package constraint

import (
	"math"

	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/samber/lo"
)

// Build translates the domain into the decision model of the given mode. Variables are only created for
// feasible (course, room, period) combinations, so curriculum membership, teacher availability and room
// compatibility hold by construction. In strict mode a pair without any feasible variable yields a
// *ModelError; in relaxed mode such pairs are kept and can only end up unmet.
func Build(domain *model.Domain, mode Mode, options Options) (*Model, error) {
	classes, courses, teachers, rooms, periods := domain.Classes(), domain.Courses(), domain.Teachers(), domain.Rooms(), domain.Periods()

	//** Initialize model
	m := &Model{
		Mode:     mode,
		Domain:   domain,
		Classes:  len(classes),
		Teachers: len(teachers),
		Rooms:    len(rooms),
		Periods:  len(periods),
		ids: identifiers{
			classes:  lo.Map(classes, func(class model.Class, _ int) string { return class.Id }),
			courses:  lo.Map(courses, func(course model.Course, _ int) string { return course.Id }),
			teachers: lo.Map(teachers, func(teacher model.Teacher, _ int) string { return teacher.Id }),
			rooms:    lo.Map(rooms, func(room model.Room, _ int) string { return room.Id }),
			periods:  lo.Map(periods, func(period model.Period, _ int) string { return period.Id }),
		},
	}
	m.indexer = newIndexer(uint64(len(courses)), uint64(len(rooms)), uint64(len(periods)))
	m.slots = make([]int32, m.indexer.Size())
	for i := range m.slots {
		m.slots[i] = -1
	}

	//** Initialize dependencies
	evaluator := newPredicateEvaluator(domain)

	//** Variables and frequency constraints
	missing := make([]model.Pair, 0)
	for _, pair := range domain.Pairs() {
		course := domain.CourseIndex(pair.Course)
		requirement := Requirement{
			Pair:      pair,
			Course:    course,
			Class:     domain.ClassIndex(pair.Class),
			Teacher:   domain.TeacherIndex(courses[course].Teacher),
			Variables: make([]int, 0),
		}

		for period := range periods {
			// Prune periods in which the teacher is unavailable
			if !evaluator.TeacherAvailable(course, period) {
				continue
			}
			for room := range rooms {
				// Prune rooms that do not accept the course or cannot seat its class
				if !evaluator.Compatible(room, course) || !evaluator.Fits(room, course) {
					continue
				}

				index := len(m.Variables)
				m.Variables = append(m.Variables, Variable{
					Requirement: len(m.Requirements),
					Course:      course,
					Class:       requirement.Class,
					Teacher:     requirement.Teacher,
					Room:        room,
					Period:      period,
					Weight:      periods[period].Weight,
				})
				m.slots[m.indexer.Index(uint64(course), uint64(room), uint64(period))] = int32(index)
				requirement.Variables = append(requirement.Variables, index)
			}
		}

		if len(requirement.Variables) == 0 {
			missing = append(missing, pair)
		}
		m.Requirements = append(m.Requirements, requirement)
	}

	if mode == Strict && len(missing) > 0 {
		return nil, &ModelError{Mode: mode, Pairs: missing}
	}

	//** Conflict constraints
	m.Groups = conflictGroups(m)

	//** Objective
	m.MaxWeight = lo.SumBy(m.Requirements, func(requirement Requirement) int64 {
		return lo.Max(lo.Map(requirement.Variables, func(variable int, _ int) int64 { return m.Variables[variable].Weight }))
	})
	if mode == Relaxed {
		credits := lo.SumBy(m.Requirements, func(requirement Requirement) int64 { return int64(courses[requirement.Course].Credits) })
		m.Penalty = penalty(options.PenaltyMultiplier, m.MaxWeight+credits)
		for i := range m.Requirements {
			m.Requirements[i].Penalty = m.Penalty + int64(courses[m.Requirements[i].Course].Credits)
		}
	}

	return m, nil
}

// Unschedulable returns the pairs that have no feasible variable
func (m *Model) Unschedulable() []model.Pair {
	return lo.FilterMap(m.Requirements, func(requirement Requirement, _ int) (model.Pair, bool) {
		return requirement.Pair, len(requirement.Variables) == 0
	})
}

// penalty exceeds the given bound as long as the multiplier is at least one, which guarantees that covering
// one more pair is worth more than any combination of period weights and credits
func penalty(multiplier float64, bound int64) int64 {
	if multiplier <= 0 {
		multiplier = 1
	}
	value := int64(math.Ceil(multiplier * float64(bound+1)))
	return max(value, 1)
}

type indexedGroups struct {
	index  int
	groups []Group
}

func conflictGroups(m *Model) []Group {
	// Constraints functions
	families := []func(m *Model) []Group{
		classConflicts,
		teacherConflicts,
		roomConflicts,
	}

	// Execute constraints functions on different goroutines and collect them in declaration order
	groupsChannel := make(chan indexedGroups)
	for i, family := range families {
		go func(i int, family func(m *Model) []Group) {
			groupsChannel <- indexedGroups{index: i, groups: family(m)}
		}(i, family)
	}

	collected := make([][]Group, len(families))
	for range families {
		result := <-groupsChannel
		collected[result.index] = result.groups
	}
	close(groupsChannel)

	return lo.Flatten(collected)
}

// A class attends at most one lesson per period
func classConflicts(m *Model) []Group {
	return groupBy(m, ClassGroup, m.Classes, func(variable Variable) int { return variable.Class })
}

// A teacher teaches at most one lesson per period
func teacherConflicts(m *Model) []Group {
	return groupBy(m, TeacherGroup, m.Teachers, func(variable Variable) int { return variable.Teacher })
}

// A room hosts at most one lesson per period
func roomConflicts(m *Model) []Group {
	return groupBy(m, RoomGroup, m.Rooms, func(variable Variable) int { return variable.Room })
}

// groupBy buckets variables per (entity, period). Buckets holding a single variable are trivially
// satisfied and therefore skipped.
func groupBy(m *Model, kind GroupKind, entities int, entity func(Variable) int) []Group {
	buckets := make([][]int, entities*m.Periods)
	for index, variable := range m.Variables {
		key := entity(variable)*m.Periods + variable.Period
		buckets[key] = append(buckets[key], index)
	}

	groups := make([]Group, 0)
	for key, variables := range buckets {
		if len(variables) < 2 {
			continue
		}
		groups = append(groups, Group{
			Kind:      kind,
			Entity:    key / m.Periods,
			Period:    key % m.Periods,
			Variables: variables,
		})
	}
	return groups
}
