package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const periods = `"periods": [
	{"id": "p1", "weekday": 0, "start": "07:00", "end": "09:55", "weight": 5},
	{"id": "p2", "weekday": 0, "start": "10:05", "end": "12:55", "weight": 4}
]`

const scenarioA = `{
	"classes": [{"id": "L1", "curriculum": ["C1"]}],
	"courses": [{"id": "C1", "class": "L1", "teacher": "T1"}],
	"teachers": [{"id": "T1", "unavailable": ["p2"]}],
	"rooms": [{"id": "R1"}],
	` + periods + `
}`

const scenarioB = `{
	"classes": [{"id": "L1", "curriculum": ["C1", "C2"]}],
	"courses": [{"id": "C1", "class": "L1", "teacher": "T1"}, {"id": "C2", "class": "L1", "teacher": "T1"}],
	"teachers": [{"id": "T1", "unavailable": ["p2"]}],
	"rooms": [{"id": "R1"}, {"id": "R2"}],
	` + periods + `
}`

const unknownTeacher = `{
	"classes": [{"id": "L1", "curriculum": ["C1"]}],
	"courses": [{"id": "C1", "class": "L1", "teacher": "T9"}],
	"teachers": [{"id": "T1"}],
	"rooms": [{"id": "R1"}],
	` + periods + `
}`

func inputFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(args ...string) (int, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String()
}

func TestRunStrict(t *testing.T) {
	//** Act
	code, out := execute("-file", inputFile(t, scenarioA))

	//** Assert
	assert.Equal(t, 0, code)
	var decoded struct {
		State   string `json:"state"`
		Classes map[string]struct {
			Days []struct {
				Slots []struct {
					Period string         `json:"period"`
					Cell   map[string]any `json:"cell"`
				} `json:"slots"`
			} `json:"days"`
		} `json:"classes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "SUCCEEDED_STRICT", decoded.State)
	slots := decoded.Classes["L1"].Days[0].Slots
	require.Len(t, slots, 2)
	assert.Equal(t, map[string]any{"course": "C1", "teacher": "T1", "room": "R1"}, slots[0].Cell)
	assert.Nil(t, slots[1].Cell)
}

func TestRunRelaxed(t *testing.T) {
	//** Arrange
	dir := t.TempDir()
	outPath := filepath.Join(dir, "timetable.txt")
	metricsPath := filepath.Join(dir, "metrics.prom")

	//** Act
	code, out := execute("-file", inputFile(t, scenarioB), "-format", "text", "-out", outPath, "-metrics", metricsPath)

	//** Assert
	assert.Equal(t, 1, code)
	assert.Empty(t, out)

	text, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(text), "State: SUCCEEDED_RELAXED")
	assert.Contains(t, string(text), "L1/C2")

	exposition, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(exposition), "timetabler_solves_total")
}

func TestRunPDF(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "timetable.pdf")

	code, _ := execute("-file", inputFile(t, scenarioA), "-format", "pdf", "-out", outPath, "-title", "Emploi du Temps", "-subtitle", "Semestre 1")

	assert.Equal(t, 0, code)
	document, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(document, []byte("%PDF-")))
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-h"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "-subtitle")
}

func TestRunIsReproducible(t *testing.T) {
	//** Arrange
	input := inputFile(t, scenarioB)

	//** Act
	firstCode, first := execute("-file", input)
	secondCode, second := execute("-file", input)

	//** Assert
	assert.Equal(t, 1, firstCode)
	assert.Equal(t, firstCode, secondCode)
	assert.Equal(t, first, second)
}

func TestRunDIMACS(t *testing.T) {
	dimacsPath := filepath.Join(t.TempDir(), "strict.cnf")

	code, _ := execute("-file", inputFile(t, scenarioA), "-dimacs", dimacsPath)

	assert.Equal(t, 0, code)
	cnf, err := os.ReadFile(dimacsPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(cnf), "p cnf 1 1"), string(cnf))
}

func TestRunFailures(t *testing.T) {
	scenarios := map[string]struct {
		args []string
		code int
	}{
		"Invalid input":       {[]string{"-file", inputFile(t, unknownTeacher)}, exitInvalidInput},
		"Malformed input":     {[]string{"-file", inputFile(t, `{"classes": [`)}, exitIO},
		"Missing input file":  {[]string{"-file", filepath.Join(t.TempDir(), "absent.json")}, exitIO},
		"No input":            {[]string{}, exitIO},
		"Two inputs":          {[]string{"-file", "a.json", "-csv", "dir"}, exitIO},
		"Subjects alone":      {[]string{"-subjects", "subjects.json"}, exitIO},
		"Unknown format":      {[]string{"-file", "a.json", "-format", "xlsx"}, exitIO},
		"Unknown flag":        {[]string{"-solver", "kissat"}, exitIO},
		"Missing config file": {[]string{"-file", inputFile(t, scenarioA), "-config", filepath.Join(t.TempDir(), "absent.yaml")}, exitIO},
		"Unwritable out":      {[]string{"-file", inputFile(t, scenarioA), "-out", filepath.Join(t.TempDir(), "missing", "out.json")}, exitIO},
	}

	for name, scenario := range scenarios {
		t.Run(name, func(t *testing.T) {
			code, _ := execute(scenario.args...)
			assert.Equal(t, scenario.code, code)
		})
	}
}
