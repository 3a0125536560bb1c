package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/limaJavier/timetabler/pkg/schedule"
	"github.com/limaJavier/timetabler/pkg/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relaxedSchedule() *schedule.Schedule {
	monday := func(algo *schedule.Cell) schedule.Day {
		return schedule.Day{Weekday: 0, Name: "Monday", Slots: []schedule.Slot{
			{Period: "mon-1", Start: "07:00", End: "09:55", Weight: 5, Cell: algo},
			{Period: "mon-2", Start: "10:05", End: "12:55", Weight: 4},
		}}
	}
	tuesday := func() schedule.Day {
		return schedule.Day{Weekday: 1, Name: "Tuesday", Slots: []schedule.Slot{
			{Period: "tue-1", Start: "07:00", End: "09:55", Weight: 5},
		}}
	}
	return &schedule.Schedule{
		State:     solver.SucceededRelaxed,
		Objective: -4,
		Classes: map[string]*schedule.Timetable{
			"Niveau 1-1": {Class: "Niveau 1-1", Days: []schedule.Day{
				monday(&schedule.Cell{Course: "INF111", Teacher: "Dr. Kamga-Nkoulou", Room: "S008", Credits: 6}),
				tuesday(),
			}},
			"Niveau 2-1": {Class: "Niveau 2-1", Days: []schedule.Day{monday(nil), tuesday()}},
		},
		ClassOrder: []string{"Niveau 1-1", "Niveau 2-1"},
		Unmet:      []model.Pair{{Course: "INF211", Class: "Niveau 2-1"}},
		Stats:      schedule.Stats{Pairs: 2, Scheduled: 1, Unmet: 1, Morning: 1},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"json", "TEXT", " csv ", "Pdf"} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}

	_, err := ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	//** Arrange
	var first, second bytes.Buffer

	//** Act
	require.NoError(t, WriteJSON(&first, relaxedSchedule()))
	require.NoError(t, WriteJSON(&second, relaxedSchedule()))

	//** Assert
	assert.Equal(t, first.String(), second.String())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(first.Bytes(), &decoded))
	assert.Equal(t, "SUCCEEDED_RELAXED", decoded["state"])
	classes := decoded["classes"].(map[string]any)
	assert.Len(t, classes, 2)
	assert.Contains(t, classes, "Niveau 1-1")
	assert.Equal(t, []any{map[string]any{"course": "INF211", "class": "Niveau 2-1"}}, decoded["unmet"])
}

func TestWriteText(t *testing.T) {
	//** Arrange
	var out bytes.Buffer

	//** Act
	err := WriteText(&out, relaxedSchedule())

	//** Assert
	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "=== Niveau 1-1 ===")
	assert.Contains(t, text, "07:00-09:55: INF111 with Dr. Kamga-Nkoulou in S008")
	assert.Contains(t, text, "10:05-12:55: -")
	assert.Contains(t, text, "State: SUCCEEDED_RELAXED")
	assert.Contains(t, text, "Scheduled lessons: 1/2 (50.0%)")
	assert.Contains(t, text, "Morning lessons: 1 (100.0%)")
	assert.Contains(t, text, "Niveau 2-1/INF211")
	assert.Less(t, strings.Index(text, "Niveau 1-1"), strings.Index(text, "=== Niveau 2-1"))
}

func TestWriteCSV(t *testing.T) {
	//** Arrange
	var out bytes.Buffer

	//** Act
	err := WriteCSV(&out, relaxedSchedule())

	//** Assert
	require.NoError(t, err)
	assert.Equal(t,
		"class,day,period,start,end,course,teacher,room,credits\n"+
			"Niveau 1-1,Monday,mon-1,07:00,09:55,INF111,Dr. Kamga-Nkoulou,S008,6\n",
		out.String(),
	)
}

func TestWritePDF(t *testing.T) {
	//** Arrange
	options := Options{
		Title:     "Emploi du Temps",
		Subtitle:  "Département d'Informatique",
		Generated: time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC),
	}
	var out bytes.Buffer

	//** Act
	err := WritePDF(&out, relaxedSchedule(), options)

	//** Assert
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))

	t.Run("One page per class", func(t *testing.T) {
		pdf := document(relaxedSchedule(), options)
		assert.NoError(t, pdf.Error())
		assert.Equal(t, 2, pdf.PageCount())
	})

	t.Run("Empty schedule", func(t *testing.T) {
		pdf := document(&schedule.Schedule{State: solver.SucceededStrict}, Options{})
		assert.NoError(t, pdf.Error())
		assert.Equal(t, 1, pdf.PageCount())
	})
}

func TestWrite(t *testing.T) {
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			var out bytes.Buffer
			assert.NoError(t, Write(&out, format, relaxedSchedule(), Options{}))
			assert.NotZero(t, out.Len())
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Dr. Kamga", truncate("Dr. Kamga"))
	assert.Equal(t, "Dr. Kamga-Nk...", truncate("Dr. Kamga-Nkoulou"))
}
