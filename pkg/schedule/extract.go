package schedule

import (
	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/limaJavier/timetabler/pkg/solver"
	"github.com/samber/lo"
)

// Extract turns a terminal solver result into per-class weekly grids. Every schedule invariant is checked
// again on the way; a breach is reported as an *ExtractionError.
func Extract(domain *model.Domain, result *solver.Result) (*Schedule, error) {
	if !result.State.Terminal() {
		return nil, breach(nil, "state %v is not terminal", result.State)
	}

	//** Empty grids
	classes := domain.Classes()
	periods := domain.Periods()
	schedule := &Schedule{
		State:      result.State,
		Objective:  result.Objective,
		Classes:    make(map[string]*Timetable, len(classes)),
		ClassOrder: lo.Map(classes, func(class model.Class, _ int) string { return class.Id }),
		Unmet:      append([]model.Pair{}, result.Unmet...),
	}
	for _, class := range classes {
		timetable := &Timetable{Class: class.Id}
		for _, weekday := range domain.Weekdays() {
			day := Day{Weekday: weekday, Name: model.Days[weekday]}
			for _, period := range periods {
				if period.Weekday == weekday {
					day.Slots = append(day.Slots, Slot{Period: period.Id, Start: period.Start, End: period.End, Weight: period.Weight})
				}
			}
			timetable.Days = append(timetable.Days, day)
		}
		schedule.Classes[class.Id] = timetable
	}

	//** Fill and check
	required := lo.SliceToMap(domain.Pairs(), func(pair model.Pair) (model.Pair, bool) { return pair, true })
	taught := make(map[model.Pair]bool, len(result.Assignments))
	busy := make(map[[3]string]bool)
	for i := range result.Assignments {
		assignment := &result.Assignments[i]
		course, err := check(domain, assignment)
		if err != nil {
			return nil, err
		}

		pair := model.Pair{Course: assignment.Course, Class: assignment.Class}
		if !required[pair] {
			return nil, breach(assignment, "course is not in the class curriculum")
		}
		if taught[pair] {
			return nil, breach(assignment, "pair is scheduled more than once")
		}
		taught[pair] = true

		for _, key := range [][3]string{
			{"class", assignment.Class, assignment.Period},
			{"teacher", assignment.Teacher, assignment.Period},
			{"room", assignment.Room, assignment.Period},
		} {
			if busy[key] {
				return nil, breach(assignment, "%v %v has two lessons in period %v", key[0], key[1], key[2])
			}
			busy[key] = true
		}

		slot, _ := schedule.Classes[assignment.Class].Slot(assignment.Period)
		slot.Cell = &Cell{Course: course.Id, Teacher: assignment.Teacher, Room: assignment.Room, Credits: course.Credits}

		schedule.Stats.Scheduled++
		if period, _ := domain.Period(assignment.Period); period.IsMorning() {
			schedule.Stats.Morning++
		}
	}

	//** Coverage
	missing := lo.Filter(domain.Pairs(), func(pair model.Pair, _ int) bool { return !taught[pair] })
	if result.State == solver.SucceededStrict && len(missing) > 0 {
		return nil, breach(nil, "strict result leaves %d pair(s) unscheduled, first %v/%v", len(missing), missing[0].Class, missing[0].Course)
	}
	if result.State != solver.SucceededStrict {
		reported := lo.SliceToMap(result.Unmet, func(pair model.Pair) (model.Pair, bool) { return pair, true })
		if len(reported) != len(result.Unmet) || len(reported) != len(missing) || lo.SomeBy(missing, func(pair model.Pair) bool { return !reported[pair] }) {
			return nil, breach(nil, "unmet list does not match the pairs absent from the grid")
		}
	} else if len(result.Unmet) > 0 {
		return nil, breach(nil, "strict result reports unmet pairs")
	}

	schedule.Stats.Pairs = len(required)
	schedule.Stats.Unmet = len(missing)
	return schedule, nil
}

// check verifies that an assignment references known entities consistently and respects availability and
// room compatibility
func check(domain *model.Domain, assignment *model.Assignment) (model.Course, error) {
	course, ok := domain.Course(assignment.Course)
	if !ok {
		return course, breach(assignment, "unknown course")
	}
	class, ok := domain.Class(assignment.Class)
	if !ok {
		return course, breach(assignment, "unknown class")
	}
	if course.Class != class.Id {
		return course, breach(assignment, "course belongs to class %v", course.Class)
	}
	if course.Teacher != assignment.Teacher {
		return course, breach(assignment, "course is taught by %v", course.Teacher)
	}
	room, ok := domain.Room(assignment.Room)
	if !ok {
		return course, breach(assignment, "unknown room")
	}
	period := domain.PeriodIndex(assignment.Period)
	if period < 0 {
		return course, breach(assignment, "unknown period")
	}
	if !domain.Available(domain.TeacherIndex(assignment.Teacher), period) {
		return course, breach(assignment, "teacher is unavailable")
	}
	if !room.Accepts(course.Type) || !room.Fits(class.Size) {
		return course, breach(assignment, "room cannot host the course")
	}
	return course, nil
}
