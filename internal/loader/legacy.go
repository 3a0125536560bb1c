package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// DefaultTeacher teaches every legacy course that lists no lecturer
const DefaultTeacher = "ENSEIGNANT_DEFAUT"

type legacySubject struct {
	Code       string   `mapstructure:"code"`
	Credit     uint64   `mapstructure:"credit"`
	Lecturers  []string `mapstructure:"Course Lecturer"`
	Assistants []string `mapstructure:"Assitant lecturer"`
}

type legacySemester struct {
	Subjects []legacySubject `mapstructure:"subjects"`
}

type legacySubjects struct {
	Levels map[string]map[string]legacySemester `mapstructure:"niveau"`
}

type legacyRoom struct {
	Number   string `mapstructure:"num"`
	Capacity uint64 `mapstructure:"capacite"`
}

type legacyRooms struct {
	Rooms []legacyRoom `mapstructure:"Informatique"`
}

// FromLegacy reads the department files: subjects.json (levels, semesters and their subjects) and
// rooms.json. Every (level, semester) becomes a class "Niveau <level>-<semester>"; the first lecturer,
// else the first assistant, else DefaultTeacher teaches a course. A subject code listed by several classes
// yields one course per class, suffixed by the class identifier.
func FromLegacy(subjectsPath, roomsPath string) (*Input, error) {
	var subjects legacySubjects
	if err := readLegacy(subjectsPath, &subjects); err != nil {
		return nil, err
	}
	var rooms legacyRooms
	if err := readLegacy(roomsPath, &rooms); err != nil {
		return nil, err
	}

	//** Classes and their subjects, in level then semester order
	type entry struct {
		class   string
		subject legacySubject
	}
	entries := make([]entry, 0)
	classes := make([]model.Class, 0)
	for _, level := range sortedKeys(subjects.Levels) {
		for _, semester := range sortedKeys(subjects.Levels[level]) {
			class := fmt.Sprintf("Niveau %v-%v", level, semester)
			classes = append(classes, model.Class{Id: class, Curriculum: []string{}})
			seen := make(map[string]bool)
			for _, subject := range subjects.Levels[level][semester].Subjects {
				subject.Code = strings.TrimSpace(subject.Code)
				if subject.Code == "" || seen[subject.Code] {
					continue
				}
				seen[subject.Code] = true
				entries = append(entries, entry{class: class, subject: subject})
			}
		}
	}

	//** Courses and teachers
	owners := lo.CountValuesBy(entries, func(entry entry) string { return entry.subject.Code })
	classIndex := lo.SliceToMap(lo.Range(len(classes)), func(i int) (string, int) { return classes[i].Id, i })
	courses := make([]model.Course, 0, len(entries))
	teachers := make([]model.Teacher, 0)
	known := make(map[string]bool)
	for _, entry := range entries {
		id := entry.subject.Code
		if owners[id] > 1 {
			id = fmt.Sprintf("%v@%v", id, entry.class)
		}
		teacher := legacyTeacher(entry.subject)
		if !known[teacher] {
			known[teacher] = true
			teachers = append(teachers, model.Teacher{Id: teacher})
		}
		courses = append(courses, model.Course{
			Id:      id,
			Class:   entry.class,
			Teacher: teacher,
			Credits: entry.subject.Credit,
		})
		class := &classes[classIndex[entry.class]]
		class.Curriculum = append(class.Curriculum, id)
	}

	return &Input{
		Classes:  classes,
		Courses:  courses,
		Teachers: teachers,
		Rooms: lo.FilterMap(rooms.Rooms, func(room legacyRoom, _ int) (model.Room, bool) {
			number := strings.TrimSpace(room.Number)
			return model.Room{Id: number, Capacity: room.Capacity}, number != ""
		}),
	}, nil
}

func legacyTeacher(subject legacySubject) string {
	for _, lecturer := range slices.Concat(subject.Lecturers, subject.Assistants) {
		if lecturer = strings.TrimSpace(lecturer); lecturer != "" {
			return lecturer
		}
	}
	return DefaultTeacher
}

func readLegacy(path string, result any) error {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{Source: path, Err: err}
	}
	var raw map[string]any
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return &LoadError{Source: path, Err: err}
	}

	// The department files mix numbers and strings for codes, credits and room numbers
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return &LoadError{Source: path, Err: err}
	}
	return nil
}

// sortedKeys orders numeric keys by value and the others lexicographically after them
func sortedKeys[V any](values map[string]V) []string {
	keys := lo.Keys(values)
	slices.SortFunc(keys, func(a, b string) int {
		numberA, errA := strconv.Atoi(a)
		numberB, errB := strconv.Atoi(b)
		switch {
		case errA == nil && errB == nil:
			return numberA - numberB
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		}
		return strings.Compare(a, b)
	})
	return keys
}
