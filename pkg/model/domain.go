package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Domain is the validated, immutable scheduling data of one solve. Iteration order of every
// collection is the input order.
type Domain struct {
	classes  []Class
	courses  []Course
	teachers []Teacher
	rooms    []Room
	periods  []Period

	classIndex   map[string]int
	courseIndex  map[string]int
	teacherIndex map[string]int
	roomIndex    map[string]int
	periodIndex  map[string]int

	unavailable [][]bool // Teacher-period matrix, coordinate (i, j) = true if and only if teacher_i cannot teach in period_j
	pairs       []Pair
}

// NewDomain validates the given entities and builds a Domain out of copies of them
func NewDomain(classes []Class, courses []Course, teachers []Teacher, rooms []Room, periods []Period) (*Domain, error) {
	domain := &Domain{
		classes:  cloneClasses(classes),
		courses:  slices.Clone(courses),
		teachers: cloneTeachers(teachers),
		rooms:    cloneRooms(rooms),
		periods:  slices.Clone(periods),
	}

	//** Field-level checks
	if err := validateFields(domain); err != nil {
		return nil, err
	}

	//** Unique identifiers within each collection
	var err error
	if domain.classIndex, err = indexBy("class", domain.classes, func(class Class) string { return class.Id }); err != nil {
		return nil, err
	}
	if domain.courseIndex, err = indexBy("course", domain.courses, func(course Course) string { return course.Id }); err != nil {
		return nil, err
	}
	if domain.teacherIndex, err = indexBy("teacher", domain.teachers, func(teacher Teacher) string { return teacher.Id }); err != nil {
		return nil, err
	}
	if domain.roomIndex, err = indexBy("room", domain.rooms, func(room Room) string { return room.Id }); err != nil {
		return nil, err
	}
	if domain.periodIndex, err = indexBy("period", domain.periods, func(period Period) string { return period.Id }); err != nil {
		return nil, err
	}

	//** Periods
	for _, period := range domain.periods {
		start, end, err := period.clock()
		if err != nil {
			return nil, invalid("period", period.Id, "times must use the HH:MM format: %v", err)
		} else if !start.Before(end) {
			return nil, invalid("period", period.Id, "start %v must precede end %v", period.Start, period.End)
		}
	}

	//** Teachers' availability
	domain.unavailable = make([][]bool, len(domain.teachers))
	for i, teacher := range domain.teachers {
		domain.unavailable[i] = make([]bool, len(domain.periods))
		for _, period := range teacher.Unavailable {
			index, ok := domain.periodIndex[period]
			if !ok {
				return nil, invalid("teacher", teacher.Id, "unavailable in unknown period \"%v\"", period)
			}
			domain.unavailable[i][index] = true
		}
	}

	//** Courses
	for i, course := range domain.courses {
		if _, ok := domain.classIndex[course.Class]; !ok {
			return nil, invalid("course", course.Id, "references unknown class \"%v\"", course.Class)
		}
		if _, ok := domain.teacherIndex[course.Teacher]; !ok {
			return nil, invalid("course", course.Id, "references unknown teacher \"%v\"", course.Teacher)
		}
		if course.Frequency == 0 {
			domain.courses[i].Frequency = 1
		}
	}

	//** Curricula
	listed := make(map[string]bool, len(domain.courses))
	for _, class := range domain.classes {
		if duplicates := lo.FindDuplicates(class.Curriculum); len(duplicates) > 0 {
			return nil, invalid("class", class.Id, "curriculum lists course \"%v\" more than once", duplicates[0])
		}
		for _, courseId := range class.Curriculum {
			index, ok := domain.courseIndex[courseId]
			if !ok {
				return nil, invalid("class", class.Id, "curriculum references unknown course \"%v\"", courseId)
			}
			if owner := domain.courses[index].Class; owner != class.Id {
				return nil, invalid("class", class.Id, "curriculum references course \"%v\" owned by class \"%v\"", courseId, owner)
			}
			listed[courseId] = true
			domain.pairs = append(domain.pairs, Pair{Course: courseId, Class: class.Id})
		}
	}
	for _, course := range domain.courses {
		if !listed[course.Id] {
			return nil, invalid("course", course.Id, "class \"%v\" does not list it in its curriculum", course.Class)
		}
	}

	return domain, nil
}

func validateFields(domain *Domain) error {
	check := func(entity, id string, value any) error {
		err := validate.Struct(value)
		if err == nil {
			return nil
		}
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
			return invalid(entity, id, "%v", err)
		}
		return invalid(entity, id, "%v", describeField(fieldErrors[0]))
	}

	for _, class := range domain.classes {
		if err := check("class", class.Id, class); err != nil {
			return err
		}
	}
	for _, course := range domain.courses {
		if err := check("course", course.Id, course); err != nil {
			return err
		}
	}
	for _, teacher := range domain.teachers {
		if err := check("teacher", teacher.Id, teacher); err != nil {
			return err
		}
	}
	for _, room := range domain.rooms {
		if err := check("room", room.Id, room); err != nil {
			return err
		}
	}
	for _, period := range domain.periods {
		if err := check("period", period.Id, period); err != nil {
			return err
		}
	}
	return nil
}

func describeField(field validator.FieldError) string {
	name := strings.ToLower(field.StructField())
	switch field.Tag() {
	case "required":
		return fmt.Sprintf("%v is required", name)
	case "gt":
		return fmt.Sprintf("%v must be greater than %v: %v", name, field.Param(), field.Value())
	case "lte":
		return fmt.Sprintf("%v must be at most %v: %v", name, field.Param(), field.Value())
	default:
		return fmt.Sprintf("%v failed on \"%v\"", name, field.Tag())
	}
}

func indexBy[T any](entity string, items []T, id func(T) string) (map[string]int, error) {
	if duplicates := lo.FindDuplicatesBy(items, id); len(duplicates) > 0 {
		return nil, invalid(entity, id(duplicates[0]), "duplicate identifier")
	}
	index := make(map[string]int, len(items))
	for i, item := range items {
		index[id(item)] = i
	}
	return index, nil
}

func cloneClasses(classes []Class) []Class {
	return lo.Map(classes, func(class Class, _ int) Class {
		class.Curriculum = slices.Clone(class.Curriculum)
		return class
	})
}

func cloneTeachers(teachers []Teacher) []Teacher {
	return lo.Map(teachers, func(teacher Teacher, _ int) Teacher {
		teacher.Unavailable = slices.Clone(teacher.Unavailable)
		return teacher
	})
}

func cloneRooms(rooms []Room) []Room {
	return lo.Map(rooms, func(room Room, _ int) Room {
		room.Types = slices.Clone(room.Types)
		return room
	})
}
