package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/limaJavier/timetabler/pkg/schedule"
)

// WriteText prints every class grid day by day followed by the run statistics
func WriteText(w io.Writer, timetable *schedule.Schedule) error {
	out := bufio.NewWriter(w)

	for _, class := range timetable.ClassOrder {
		fmt.Fprintf(out, "\n=== %v ===\n", class)
		for _, day := range timetable.Classes[class].Days {
			fmt.Fprintf(out, "  %v:\n", day.Name)
			for _, slot := range day.Slots {
				if slot.Cell == nil {
					fmt.Fprintf(out, "    %v-%v: -\n", slot.Start, slot.End)
					continue
				}
				fmt.Fprintf(out, "    %v-%v: %v with %v in %v\n", slot.Start, slot.End, slot.Cell.Course, slot.Cell.Teacher, slot.Cell.Room)
			}
		}
	}

	stats := timetable.Stats
	fmt.Fprintf(out, "\nState: %v\n", timetable.State)
	fmt.Fprintf(out, "Objective: %v\n", timetable.Objective)
	fmt.Fprintf(out, "Scheduled lessons: %v/%v (%.1f%%)\n", stats.Scheduled, stats.Pairs, stats.Coverage()*100)
	if stats.Scheduled > 0 {
		fmt.Fprintf(out, "Morning lessons: %v (%.1f%%)\n", stats.Morning, float64(stats.Morning)*100/float64(stats.Scheduled))
	}
	if len(timetable.Unmet) > 0 {
		fmt.Fprintf(out, "Unmet:\n")
		for _, pair := range timetable.Unmet {
			fmt.Fprintf(out, "  %v/%v\n", pair.Class, pair.Course)
		}
	}

	return out.Flush()
}
