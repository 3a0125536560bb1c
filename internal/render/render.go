package render

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/limaJavier/timetabler/pkg/schedule"
)

// Format names an output rendering
type Format string

const (
	JSON Format = "json"
	Text Format = "text"
	CSV  Format = "csv"
	PDF  Format = "pdf"
)

var Formats = []Format{JSON, Text, CSV, PDF}

// ParseFormat resolves a case-insensitive format name
func ParseFormat(name string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(Formats, format) {
		return "", fmt.Errorf("unknown output format \"%v\"", name)
	}
	return format, nil
}

// Write renders the schedule in the given format
func Write(w io.Writer, format Format, timetable *schedule.Schedule, options Options) error {
	switch format {
	case JSON:
		return WriteJSON(w, timetable)
	case Text:
		return WriteText(w, timetable)
	case CSV:
		return WriteCSV(w, timetable)
	case PDF:
		return WritePDF(w, timetable, options)
	default:
		return fmt.Errorf("unknown output format \"%v\"", format)
	}
}

// WriteJSON marshals the schedule with its grids keyed by class identifier
func WriteJSON(w io.Writer, timetable *schedule.Schedule) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(timetable); err != nil {
		return fmt.Errorf("cannot encode schedule: %w", err)
	}
	return nil
}
