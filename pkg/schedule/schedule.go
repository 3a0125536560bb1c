package schedule

import (
	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/limaJavier/timetabler/pkg/solver"
)

// Schedule is the presentation-ready outcome of a solve. Classes is keyed by class identifier; ClassOrder
// lists the same identifiers in input order for renderers that need a stable page order. Nothing run specific
// is carried, so equal inputs always serialize to equal bytes.
type Schedule struct {
	State      solver.State          `json:"state"`
	Objective  int64                 `json:"objective"`
	Classes    map[string]*Timetable `json:"classes"`
	ClassOrder []string              `json:"class_order"`
	Unmet      []model.Pair          `json:"unmet"`
	Stats      Stats                 `json:"stats"`
}

// Timetable is the weekly grid of one class: one entry per weekday that has periods
type Timetable struct {
	Class string `json:"class"`
	Days  []Day  `json:"days"`
}

type Day struct {
	Weekday uint64 `json:"weekday"`
	Name    string `json:"name"`
	Slots   []Slot `json:"slots"`
}

// Slot is one period of a day; Cell is nil when nothing is taught
type Slot struct {
	Period string `json:"period"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Weight int64  `json:"weight"`
	Cell   *Cell  `json:"cell"`
}

type Cell struct {
	Course  string `json:"course"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
	Credits uint64 `json:"credits,omitempty"`
}

type Stats struct {
	Pairs     int `json:"pairs"`
	Scheduled int `json:"scheduled"`
	Unmet     int `json:"unmet"`
	Morning   int `json:"morning"` // Lessons in periods starting before noon
}

// Coverage is the share of curriculum pairs that made it into the grid
func (stats Stats) Coverage() float64 {
	if stats.Pairs == 0 {
		return 1
	}
	return float64(stats.Scheduled) / float64(stats.Pairs)
}

// Slot returns the slot of the class in the given period
func (timetable *Timetable) Slot(period string) (*Slot, bool) {
	for i := range timetable.Days {
		for j := range timetable.Days[i].Slots {
			if timetable.Days[i].Slots[j].Period == period {
				return &timetable.Days[i].Slots[j], true
			}
		}
	}
	return nil, false
}
