package loader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/samber/lo"
)

// List columns hold ';'-separated identifiers
const listSeparator = ";"

type classRow struct {
	Id         string `csv:"id"`
	Curriculum string `csv:"curriculum"`
	Size       uint64 `csv:"size"`
}

type courseRow struct {
	Id        string `csv:"id"`
	Class     string `csv:"class"`
	Teacher   string `csv:"teacher"`
	Frequency uint64 `csv:"frequency"`
	Type      string `csv:"type"`
	Credits   uint64 `csv:"credits"`
}

type teacherRow struct {
	Id          string `csv:"id"`
	Unavailable string `csv:"unavailable"`
}

type roomRow struct {
	Id       string `csv:"id"`
	Capacity uint64 `csv:"capacity"`
	Types    string `csv:"types"`
}

type periodRow struct {
	Id      string `csv:"id"`
	Weekday uint64 `csv:"weekday"`
	Start   string `csv:"start"`
	End     string `csv:"end"`
	Weight  int64  `csv:"weight"`
}

// FromCSV reads classes.csv, courses.csv, teachers.csv, rooms.csv and the optional periods.csv of a directory
func FromCSV(dir string) (*Input, error) {
	var (
		classes  []*classRow
		courses  []*courseRow
		teachers []*teacherRow
		rooms    []*roomRow
		periods  []*periodRow
	)
	for _, file := range []struct {
		name     string
		rows     any
		optional bool
	}{
		{"classes.csv", &classes, false},
		{"courses.csv", &courses, false},
		{"teachers.csv", &teachers, false},
		{"rooms.csv", &rooms, false},
		{"periods.csv", &periods, true},
	} {
		if err := unmarshalFile(filepath.Join(dir, file.name), file.rows, file.optional); err != nil {
			return nil, err
		}
	}

	return &Input{
		Classes: lo.Map(classes, func(row *classRow, _ int) model.Class {
			return model.Class{Id: strings.TrimSpace(row.Id), Curriculum: splitList(row.Curriculum), Size: row.Size}
		}),
		Courses: lo.Map(courses, func(row *courseRow, _ int) model.Course {
			return model.Course{
				Id:        strings.TrimSpace(row.Id),
				Class:     strings.TrimSpace(row.Class),
				Teacher:   strings.TrimSpace(row.Teacher),
				Frequency: row.Frequency,
				Type:      strings.TrimSpace(row.Type),
				Credits:   row.Credits,
			}
		}),
		Teachers: lo.Map(teachers, func(row *teacherRow, _ int) model.Teacher {
			return model.Teacher{Id: strings.TrimSpace(row.Id), Unavailable: splitList(row.Unavailable)}
		}),
		Rooms: lo.Map(rooms, func(row *roomRow, _ int) model.Room {
			return model.Room{Id: strings.TrimSpace(row.Id), Capacity: row.Capacity, Types: splitList(row.Types)}
		}),
		Periods: lo.Map(periods, func(row *periodRow, _ int) model.Period {
			return model.Period{
				Id:      strings.TrimSpace(row.Id),
				Weekday: row.Weekday,
				Start:   strings.TrimSpace(row.Start),
				End:     strings.TrimSpace(row.End),
				Weight:  row.Weight,
			}
		}),
	}, nil
}

func unmarshalFile(path string, rows any, optional bool) error {
	file, err := os.Open(path)
	if optional && errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return &LoadError{Source: path, Err: err}
	}
	defer file.Close()

	if err := gocsv.UnmarshalFile(file, rows); err != nil {
		return &LoadError{Source: path, Err: err}
	}
	return nil
}

func splitList(value string) []string {
	items := lo.Map(strings.Split(value, listSeparator), func(item string, _ int) string { return strings.TrimSpace(item) })
	return lo.Compact(items)
}
