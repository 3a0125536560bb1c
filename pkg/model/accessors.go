package model

import (
	"slices"

	"github.com/samber/lo"
)

func (domain *Domain) Classes() []Class    { return cloneClasses(domain.classes) }
func (domain *Domain) Courses() []Course   { return slices.Clone(domain.courses) }
func (domain *Domain) Teachers() []Teacher { return cloneTeachers(domain.teachers) }
func (domain *Domain) Rooms() []Room       { return cloneRooms(domain.rooms) }
func (domain *Domain) Periods() []Period   { return slices.Clone(domain.periods) }

// Pairs returns the curriculum requirements in class order, then curriculum order
func (domain *Domain) Pairs() []Pair { return slices.Clone(domain.pairs) }

func (domain *Domain) Class(id string) (Class, bool) {
	class, ok := lookup(domain.classes, domain.classIndex, id)
	class.Curriculum = slices.Clone(class.Curriculum)
	return class, ok
}

func (domain *Domain) Course(id string) (Course, bool) {
	return lookup(domain.courses, domain.courseIndex, id)
}

func (domain *Domain) Teacher(id string) (Teacher, bool) {
	teacher, ok := lookup(domain.teachers, domain.teacherIndex, id)
	teacher.Unavailable = slices.Clone(teacher.Unavailable)
	return teacher, ok
}

func (domain *Domain) Room(id string) (Room, bool) {
	room, ok := lookup(domain.rooms, domain.roomIndex, id)
	room.Types = slices.Clone(room.Types)
	return room, ok
}

func (domain *Domain) Period(id string) (Period, bool) {
	return lookup(domain.periods, domain.periodIndex, id)
}

// Index lookups return the position of an entity in its collection, or -1 when it is unknown

func (domain *Domain) ClassIndex(id string) int   { return position(domain.classIndex, id) }
func (domain *Domain) CourseIndex(id string) int  { return position(domain.courseIndex, id) }
func (domain *Domain) TeacherIndex(id string) int { return position(domain.teacherIndex, id) }
func (domain *Domain) RoomIndex(id string) int    { return position(domain.roomIndex, id) }
func (domain *Domain) PeriodIndex(id string) int  { return position(domain.periodIndex, id) }

// Available reports whether the teacher can teach during the period
func (domain *Domain) Available(teacher, period int) bool {
	return !domain.unavailable[teacher][period]
}

// Weekdays returns the distinct weekdays covered by the periods, in ascending order
func (domain *Domain) Weekdays() []uint64 {
	days := lo.Uniq(lo.Map(domain.periods, func(period Period, _ int) uint64 { return period.Weekday }))
	slices.Sort(days)
	return days
}

func lookup[T any](items []T, index map[string]int, id string) (T, bool) {
	i, ok := index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return items[i], true
}

func position(index map[string]int, id string) int {
	if i, ok := index[id]; ok {
		return i
	}
	return -1
}
