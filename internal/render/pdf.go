package render

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/limaJavier/timetabler/pkg/schedule"
	"github.com/samber/lo"
)

// Options carries the document header of the PDF rendering
type Options struct {
	Title     string
	Subtitle  string
	Generated time.Time // Printed under the title and stored as creation date unless zero
}

const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	margin       = 10.0
	labelWidth   = 30.0
	headerHeight = 8.0
	gridHeight   = 150.0
	maxRowHeight = 25.0
	lineHeight   = 4.0
	maxNameWidth = 15
)

// Row colors from early morning to evening, cycled when a day has more periods
var rowColors = [][3]int{
	{204, 255, 204},
	{230, 255, 230},
	{255, 255, 204},
	{255, 230, 204},
	{255, 204, 204},
}

// WritePDF renders one landscape A4 page per class: periods as rows, weekdays as columns
func WritePDF(w io.Writer, timetable *schedule.Schedule, options Options) error {
	pdf := document(timetable, options)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("cannot render pdf: %w", err)
	}
	return nil
}

func document(timetable *schedule.Schedule, options Options) *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	if !options.Generated.IsZero() {
		pdf.SetCreationDate(options.Generated)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	unmet := lo.GroupBy(timetable.Unmet, func(pair model.Pair) string { return pair.Class })
	for _, class := range timetable.ClassOrder {
		pdf.AddPage()
		header(pdf, tr, options, class)
		grid(pdf, tr, timetable.Classes[class])
		if courses := unmet[class]; len(courses) > 0 {
			pdf.Ln(4)
			pdf.SetFont("Arial", "I", 9)
			names := lo.Map(courses, func(pair model.Pair, _ int) string { return pair.Course })
			pdf.MultiCell(0, 5, tr("Unscheduled: "+strings.Join(names, ", ")), "", "L", false)
		}
	}

	if pdf.PageCount() == 0 {
		pdf.AddPage()
		header(pdf, tr, options, "")
	}
	return pdf
}

func header(pdf *gofpdf.Fpdf, tr func(string) string, options Options, class string) {
	if options.Title != "" {
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 8, tr(options.Title), "", 1, "C", false, 0, "")
	}
	if options.Subtitle != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 6, tr(options.Subtitle), "", 1, "C", false, 0, "")
	}
	if !options.Generated.IsZero() {
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, "Generated on "+options.Generated.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	}
	if class != "" {
		pdf.SetFont("Arial", "B", 13)
		pdf.SetTextColor(0, 0, 200)
		pdf.CellFormat(0, 8, tr(class), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(2)
}

func grid(pdf *gofpdf.Fpdf, tr func(string) string, timetable *schedule.Timetable) {
	if len(timetable.Days) == 0 {
		return
	}

	//** Rows are the distinct time ranges of the week
	type span struct{ start, end string }
	spans := make([]span, 0)
	for _, day := range timetable.Days {
		for _, slot := range day.Slots {
			if current := (span{slot.Start, slot.End}); !slices.Contains(spans, current) {
				spans = append(spans, current)
			}
		}
	}
	slices.SortStableFunc(spans, func(a, b span) int {
		if a.start != b.start {
			return strings.Compare(a.start, b.start)
		}
		return strings.Compare(a.end, b.end)
	})

	columnWidth := (pageWidth - 2*margin - labelWidth) / float64(len(timetable.Days))
	rowHeight := math.Min(maxRowHeight, gridHeight/float64(max(len(spans), 1)))

	//** Header row
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(173, 216, 230)
	pdf.CellFormat(labelWidth, headerHeight, "Period", "1", 0, "C", true, 0, "")
	for _, day := range timetable.Days {
		pdf.CellFormat(columnWidth, headerHeight, day.Name, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	//** Period rows
	pdf.SetFont("Arial", "", 8)
	for i, current := range spans {
		x, y := pdf.GetXY()
		pdf.SetFillColor(255, 255, 255)
		pdf.CellFormat(labelWidth, rowHeight, current.start+"-"+current.end, "1", 0, "C", true, 0, "")

		color := rowColors[i%len(rowColors)]
		for j, day := range timetable.Days {
			left := x + labelWidth + float64(j)*columnWidth
			slot, ok := lo.Find(day.Slots, func(slot schedule.Slot) bool { return slot.Start == current.start && slot.End == current.end })
			if ok {
				pdf.SetFillColor(color[0], color[1], color[2])
			} else {
				pdf.SetFillColor(230, 230, 230)
			}
			pdf.Rect(left, y, columnWidth, rowHeight, "FD")
			if !ok || slot.Cell == nil {
				continue
			}
			text := fmt.Sprintf("%v\nTeacher: %v\nRoom: %v", slot.Cell.Course, truncate(slot.Cell.Teacher), slot.Cell.Room)
			pdf.SetXY(left, y+math.Max(0, (rowHeight-3*lineHeight)/2))
			pdf.MultiCell(columnWidth, lineHeight, tr(text), "", "C", false)
		}
		pdf.SetXY(x, y+rowHeight)
	}
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxNameWidth {
		return text
	}
	return string(runes[:maxNameWidth-3]) + "..."
}
