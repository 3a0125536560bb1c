package constraint

import (
	"github.com/limaJavier/timetabler/pkg/model"
)

type Mode int

const (
	// Strict requires every curriculum pair to be scheduled exactly once
	Strict Mode = iota
	// Relaxed allows pairs to stay unmet at a penalty
	Relaxed
)

func (mode Mode) String() string {
	if mode == Relaxed {
		return "relaxed"
	}
	return "strict"
}

func (mode Mode) MarshalText() ([]byte, error) {
	return []byte(mode.String()), nil
}

type Options struct {
	// PenaltyMultiplier scales the relaxed-mode penalty of an unmet pair. Values >= 1 make coverage dominate
	// any morning-preference gain
	PenaltyMultiplier float64
}

// Variable is the binary decision "course is taught in room during period". Indices refer to the
// domain collections.
type Variable struct {
	Requirement int
	Course      int
	Class       int
	Teacher     int
	Room        int
	Period      int
	Weight      int64
}

// Requirement is a curriculum (course, class) pair together with the frequency constraint over its variables
type Requirement struct {
	Pair      model.Pair
	Course    int
	Class     int
	Teacher   int
	Variables []int // Arena indices ordered by period, then room
	Penalty   int64 // Relaxed only: objective loss when the pair stays unmet
}

type GroupKind int

const (
	ClassGroup GroupKind = iota
	TeacherGroup
	RoomGroup
)

func (kind GroupKind) String() string {
	switch kind {
	case ClassGroup:
		return "class"
	case TeacherGroup:
		return "teacher"
	default:
		return "room"
	}
}

// Group is a conflict constraint: at most one of its variables can be set
type Group struct {
	Kind      GroupKind
	Entity    int // Class, teacher or room index depending on Kind
	Period    int
	Variables []int
}

// Model is the solver-ready representation of a domain for one mode. It is read-only once built and can
// be shared by concurrent searches.
type Model struct {
	Mode         Mode
	Domain       *model.Domain
	Variables    []Variable // Dense arena
	Requirements []Requirement
	Groups       []Group
	Penalty      int64 // Base penalty of an unmet pair (relaxed only)
	MaxWeight    int64 // Upper bound of the weight sum over all requirements

	Classes, Teachers, Rooms, Periods int

	indexer indexer
	slots   []int32 // Indexer-addressed arena positions, -1 for pruned combinations
	ids     identifiers
}

// identifiers caches entity identifiers by index
type identifiers struct {
	classes, courses, teachers, rooms, periods []string
}

// Lookup returns the arena index of the (course, room, period) variable, or -1 when it was pruned
func (m *Model) Lookup(course, room, period int) int {
	return int(m.slots[m.indexer.Index(uint64(course), uint64(room), uint64(period))])
}

// Value is the objective contribution of setting the variable. In relaxed mode the requirement penalty is
// folded into it; Offset restores the true objective.
func (m *Model) Value(variable int) int64 {
	v := m.Variables[variable]
	if m.Mode == Relaxed {
		return v.Weight + m.Requirements[v.Requirement].Penalty
	}
	return v.Weight
}

// Offset is the objective of the empty assignment: zero in strict mode, minus every penalty in relaxed mode
func (m *Model) Offset() int64 {
	if m.Mode == Strict {
		return 0
	}
	var offset int64
	for _, requirement := range m.Requirements {
		offset -= requirement.Penalty
	}
	return offset
}

// Objective evaluates a set of selected variables
func (m *Model) Objective(selected []int) int64 {
	objective := m.Offset()
	for _, variable := range selected {
		objective += m.Value(variable)
	}
	return objective
}

// Assignment converts a variable into its domain representation
func (m *Model) Assignment(variable int) model.Assignment {
	v := m.Variables[variable]
	return model.Assignment{
		Course:  m.ids.courses[v.Course],
		Class:   m.ids.classes[v.Class],
		Teacher: m.ids.teachers[v.Teacher],
		Room:    m.ids.rooms[v.Room],
		Period:  m.ids.periods[v.Period],
	}
}

// Key is the tie-break key of a variable: its period identifier, then its room identifier
func (m *Model) Key(variable int) (period string, room string) {
	v := m.Variables[variable]
	return m.ids.periods[v.Period], m.ids.rooms[v.Room]
}
