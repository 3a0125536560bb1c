package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultPeriods = []model.Period{
	{Id: "mon-1", Weekday: 0, Start: "07:00", End: "09:55", Weight: 5},
	{Id: "mon-2", Weekday: 0, Start: "10:05", End: "12:55", Weight: 4},
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

const document = `{
	"classes": [
		{"id": "L1-S1", "curriculum": ["INF111", "INF112"], "size": 40},
		{"id": "L2-S1", "curriculum": ["INF211"]}
	],
	"courses": [
		{"id": "INF111", "class": "L1-S1", "teacher": "ada", "credits": 6},
		{"id": "INF112", "class": "L1-S1", "teacher": "alan", "type": "lab"},
		{"id": "INF211", "class": "L2-S1", "teacher": "ada", "frequency": 1}
	],
	"teachers": [
		{"id": "ada", "unavailable": ["mon-2"]},
		{"id": "alan"}
	],
	"rooms": [
		{"id": "S008", "capacity": 60},
		{"id": "LAB1", "capacity": 30, "types": ["lab"]}
	]
}`

func TestFromJSON(t *testing.T) {
	//** Arrange
	dir := writeFiles(t, map[string]string{"input.json": document})

	//** Act
	input, err := FromJSON(filepath.Join(dir, "input.json"))

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, []model.Class{
		{Id: "L1-S1", Curriculum: []string{"INF111", "INF112"}, Size: 40},
		{Id: "L2-S1", Curriculum: []string{"INF211"}},
	}, input.Classes)
	assert.Equal(t, model.Course{Id: "INF111", Class: "L1-S1", Teacher: "ada", Credits: 6}, input.Courses[0])
	assert.Equal(t, "lab", input.Courses[1].Type)
	assert.Equal(t, []string{"mon-2"}, input.Teachers[0].Unavailable)
	assert.Equal(t, model.Room{Id: "LAB1", Capacity: 30, Types: []string{"lab"}}, input.Rooms[1])
	assert.Empty(t, input.Periods)

	domain, err := input.Domain(defaultPeriods)
	require.NoError(t, err)
	assert.Equal(t, defaultPeriods, domain.Periods())
	assert.Len(t, domain.Pairs(), 3)
}

func TestFromJSONRejectsMalformedInput(t *testing.T) {
	scenarios := map[string]string{
		"Syntax":      `{"classes": [`,
		"Unknown key": `{"classes": [], "lecturers": []}`,
		"Wrong type":  `{"classes": [{"id": "L1", "curriculum": "INF111"}]}`,
	}

	for name, content := range scenarios {
		t.Run(name, func(t *testing.T) {
			//** Arrange
			dir := writeFiles(t, map[string]string{"input.json": content})

			//** Act
			input, err := FromJSON(filepath.Join(dir, "input.json"))

			//** Assert
			assert.Nil(t, input)
			var loadErr *LoadError
			assert.True(t, errors.As(err, &loadErr))
		})
	}

	t.Run("Missing file", func(t *testing.T) {
		input, err := FromJSON(filepath.Join(t.TempDir(), "absent.json"))

		assert.Nil(t, input)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestInputValidation(t *testing.T) {
	//** Arrange
	dir := writeFiles(t, map[string]string{"input.json": `{
		"classes": [{"id": "L1", "curriculum": ["C1"]}],
		"courses": [{"id": "C1", "class": "L9", "teacher": "ada"}],
		"teachers": [{"id": "ada"}],
		"rooms": [{"id": "R1"}]
	}`})
	input, err := FromJSON(filepath.Join(dir, "input.json"))
	require.NoError(t, err)

	//** Act
	domain, err := input.Domain(defaultPeriods)

	//** Assert
	assert.Nil(t, domain)
	var validationErr *model.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestFromCSV(t *testing.T) {
	//** Arrange
	dir := writeFiles(t, map[string]string{
		"classes.csv":  "id,curriculum,size\nL1-S1,INF111; INF112,40\nL2-S1,INF211,0\n",
		"courses.csv":  "id,class,teacher,frequency,type,credits\nINF111,L1-S1,ada,1,,6\nINF112,L1-S1,alan,1,lab,0\nINF211,L2-S1,ada,1,,3\n",
		"teachers.csv": "id,unavailable\nada,mon-2\nalan,\n",
		"rooms.csv":    "id,capacity,types\nS008,60,\nLAB1,30,lab;tp\n",
	})

	//** Act
	input, err := FromCSV(dir)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, []model.Class{
		{Id: "L1-S1", Curriculum: []string{"INF111", "INF112"}, Size: 40},
		{Id: "L2-S1", Curriculum: []string{"INF211"}},
	}, input.Classes)
	assert.Equal(t, model.Course{Id: "INF112", Class: "L1-S1", Teacher: "alan", Frequency: 1, Type: "lab"}, input.Courses[1])
	assert.Equal(t, []string{"mon-2"}, input.Teachers[0].Unavailable)
	assert.Empty(t, input.Teachers[1].Unavailable)
	assert.Equal(t, []string{"lab", "tp"}, input.Rooms[1].Types)
	assert.Empty(t, input.Periods)

	_, err = input.Domain(defaultPeriods)
	assert.NoError(t, err)
}

func TestFromCSVWithPeriods(t *testing.T) {
	//** Arrange
	dir := writeFiles(t, map[string]string{
		"classes.csv":  "id,curriculum,size\nL1,C1,0\n",
		"courses.csv":  "id,class,teacher,frequency,type,credits\nC1,L1,ada,1,,0\n",
		"teachers.csv": "id,unavailable\nada,\n",
		"rooms.csv":    "id,capacity,types\nR1,0,\n",
		"periods.csv":  "id,weekday,start,end,weight\nfri-1,4,08:00,10:00,3\n",
	})

	//** Act
	input, err := FromCSV(dir)
	require.NoError(t, err)
	domain, err := input.Domain(defaultPeriods)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, []model.Period{{Id: "fri-1", Weekday: 4, Start: "08:00", End: "10:00", Weight: 3}}, domain.Periods())
}

func TestFromCSVMissingFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{"classes.csv": "id,curriculum,size\n"})

	input, err := FromCSV(dir)

	assert.Nil(t, input)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, filepath.Join(dir, "courses.csv"), loadErr.Source)
}

func TestFromLegacy(t *testing.T) {
	//** Arrange
	dir := writeFiles(t, map[string]string{
		"subjects.json": `{"niveau": {
			"2": {"1": {"subjects": [
				{"code": "INF211", "credit": 6, "Course Lecturer": ["Dr. Kamga"]},
				{"code": "ENG203", "credit": "2"}
			]}},
			"1": {
				"2": {"subjects": [{"code": "INF121", "credit": 5, "Course Lecturer": [""], "Assitant lecturer": ["M. Ngo"]}]},
				"1": {"subjects": [
					{"code": "INF111", "credit": 6, "Course Lecturer": ["Dr. Kamga", "Pr. Atsa"]},
					{"code": "ENG203", "credit": 2, "Course Lecturer": ["Mme. Bella"]},
					{"code": " ", "credit": 1}
				]}
			}
		}}`,
		"rooms.json": `{"Informatique": [{"num": "S008", "capacite": 120}, {"num": 101}, {"num": ""}]}`,
	})

	//** Act
	input, err := FromLegacy(filepath.Join(dir, "subjects.json"), filepath.Join(dir, "rooms.json"))

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, []model.Class{
		{Id: "Niveau 1-1", Curriculum: []string{"INF111", "ENG203@Niveau 1-1"}},
		{Id: "Niveau 1-2", Curriculum: []string{"INF121"}},
		{Id: "Niveau 2-1", Curriculum: []string{"INF211", "ENG203@Niveau 2-1"}},
	}, input.Classes)
	assert.Equal(t, []model.Course{
		{Id: "INF111", Class: "Niveau 1-1", Teacher: "Dr. Kamga", Credits: 6},
		{Id: "ENG203@Niveau 1-1", Class: "Niveau 1-1", Teacher: "Mme. Bella", Credits: 2},
		{Id: "INF121", Class: "Niveau 1-2", Teacher: "M. Ngo", Credits: 5},
		{Id: "INF211", Class: "Niveau 2-1", Teacher: "Dr. Kamga", Credits: 6},
		{Id: "ENG203@Niveau 2-1", Class: "Niveau 2-1", Teacher: DefaultTeacher, Credits: 2},
	}, input.Courses)
	assert.Equal(t, []model.Teacher{{Id: "Dr. Kamga"}, {Id: "Mme. Bella"}, {Id: "M. Ngo"}, {Id: DefaultTeacher}}, input.Teachers)
	assert.Equal(t, []model.Room{{Id: "S008", Capacity: 120}, {Id: "101"}}, input.Rooms)

	_, err = input.Domain(defaultPeriods)
	assert.NoError(t, err)
}
