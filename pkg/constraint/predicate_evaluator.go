package constraint

import (
	"github.com/limaJavier/timetabler/pkg/model"
)

type predicateEvaluator interface {
	// Checks whether the course's teacher is available to teach at the given period
	TeacherAvailable(course, period int) bool

	// Checks whether the room accepts the course's type
	Compatible(room, course int) bool

	// Checks whether the course's class size is smaller than or equal to the room's capacity (i.e. the class fits in the room)
	Fits(room, course int) bool
}

type predicateEvaluatorStandard struct {
	domain  *model.Domain
	courses []model.Course
	rooms   []model.Room
	sizes   []uint64 // Class size per course
	teacher []int    // Teacher index per course
}

func newPredicateEvaluator(domain *model.Domain) predicateEvaluator {
	courses := domain.Courses()
	evaluator := &predicateEvaluatorStandard{
		domain:  domain,
		courses: courses,
		rooms:   domain.Rooms(),
		sizes:   make([]uint64, len(courses)),
		teacher: make([]int, len(courses)),
	}

	for i, course := range courses {
		class, _ := domain.Class(course.Class)
		evaluator.sizes[i] = class.Size
		evaluator.teacher[i] = domain.TeacherIndex(course.Teacher)
	}
	return evaluator
}

func (evaluator *predicateEvaluatorStandard) TeacherAvailable(course, period int) bool {
	return evaluator.domain.Available(evaluator.teacher[course], period)
}

func (evaluator *predicateEvaluatorStandard) Compatible(room, course int) bool {
	return evaluator.rooms[room].Accepts(evaluator.courses[course].Type)
}

func (evaluator *predicateEvaluatorStandard) Fits(room, course int) bool {
	return evaluator.rooms[room].Fits(evaluator.sizes[course])
}
