package render

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/timetabler/pkg/schedule"
)

type lessonRow struct {
	Class   string `csv:"class"`
	Day     string `csv:"day"`
	Period  string `csv:"period"`
	Start   string `csv:"start"`
	End     string `csv:"end"`
	Course  string `csv:"course"`
	Teacher string `csv:"teacher"`
	Room    string `csv:"room"`
	Credits uint64 `csv:"credits"`
}

// WriteCSV emits one row per scheduled lesson, classes in input order and periods in grid order
func WriteCSV(w io.Writer, timetable *schedule.Schedule) error {
	rows := lessons(timetable)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("cannot encode schedule: %w", err)
	}
	return nil
}

func lessons(timetable *schedule.Schedule) []*lessonRow {
	rows := make([]*lessonRow, 0, timetable.Stats.Scheduled)
	for _, class := range timetable.ClassOrder {
		for _, day := range timetable.Classes[class].Days {
			for _, slot := range day.Slots {
				if slot.Cell == nil {
					continue
				}
				rows = append(rows, &lessonRow{
					Class:   class,
					Day:     day.Name,
					Period:  slot.Period,
					Start:   slot.Start,
					End:     slot.End,
					Course:  slot.Cell.Course,
					Teacher: slot.Cell.Teacher,
					Room:    slot.Cell.Room,
					Credits: slot.Cell.Credits,
				})
			}
		}
	}
	return rows
}
