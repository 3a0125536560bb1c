package model

import (
	"slices"
	"time"
)

const clockLayout = "15:04"

var Days = map[uint64]string{
	0: "Monday",
	1: "Tuesday",
	2: "Wednesday",
	3: "Thursday",
	4: "Friday",
	5: "Saturday",
	6: "Sunday",
}

// Class is a student cohort (level-semester) following a curriculum
type Class struct {
	Id         string   `mapstructure:"id" validate:"required"`
	Curriculum []string `mapstructure:"curriculum" validate:"dive,required"` // Ordered course identifiers
	Size       uint64   `mapstructure:"size"`                                // Number of students, 0 when unknown
}

type Course struct {
	Id        string `mapstructure:"id" validate:"required"`
	Class     string `mapstructure:"class" validate:"required"`
	Teacher   string `mapstructure:"teacher" validate:"required"`
	Frequency uint64 `mapstructure:"frequency" validate:"lte=1"` // Weekly lessons; 0 is read as 1
	Type      string `mapstructure:"type"`                       // Room compatibility tag, empty fits any room
	Credits   uint64 `mapstructure:"credits"`
}

type Teacher struct {
	Id          string   `mapstructure:"id" validate:"required"`
	Unavailable []string `mapstructure:"unavailable" validate:"dive,required"` // Period identifiers
}

type Room struct {
	Id       string   `mapstructure:"id" validate:"required"`
	Capacity uint64   `mapstructure:"capacity"`                       // 0 means unlimited
	Types    []string `mapstructure:"types" validate:"dive,required"` // Compatible course types, empty accepts any type
}

type Period struct {
	Id      string `mapstructure:"id" validate:"required"`
	Weekday uint64 `mapstructure:"weekday" validate:"lte=6"`
	Start   string `mapstructure:"start" validate:"required"`
	End     string `mapstructure:"end" validate:"required"`
	Weight  int64  `mapstructure:"weight" validate:"gt=0"`
}

// Assignment states that a course is taught to its class by its teacher in a room during a period
type Assignment struct {
	Course  string `json:"course"`
	Class   string `json:"class"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
	Period  string `json:"period"`
}

// Pair is a (course, class) requirement derived from a class curriculum
type Pair struct {
	Course string `json:"course"`
	Class  string `json:"class"`
}

// Accepts reports whether the room can host lessons of the given course type
func (room Room) Accepts(courseType string) bool {
	return courseType == "" || len(room.Types) == 0 || slices.Contains(room.Types, courseType)
}

// Fits reports whether a class of the given size fits in the room
func (room Room) Fits(size uint64) bool {
	return size == 0 || room.Capacity == 0 || size <= room.Capacity
}

func (period Period) Day() string {
	return Days[period.Weekday]
}

func (period Period) Label() string {
	return period.Start + "-" + period.End
}

func (period Period) clock() (start time.Time, end time.Time, err error) {
	if start, err = time.Parse(clockLayout, period.Start); err != nil {
		return start, end, err
	}
	end, err = time.Parse(clockLayout, period.End)
	return start, end, err
}

// IsMorning reports whether the period starts before noon
func (period Period) IsMorning() bool {
	start, _, err := period.clock()
	return err == nil && start.Hour() < 12
}
