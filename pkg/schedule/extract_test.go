package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/limaJavier/timetabler/pkg/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) *model.Domain {
	t.Helper()
	domain, err := model.NewDomain(
		[]model.Class{
			{Id: "L1", Curriculum: []string{"ALGO", "WEB"}},
			{Id: "L2", Curriculum: []string{"NET"}},
		},
		[]model.Course{
			{Id: "ALGO", Class: "L1", Teacher: "ada", Credits: 5},
			{Id: "WEB", Class: "L1", Teacher: "alan"},
			{Id: "NET", Class: "L2", Teacher: "ada"},
		},
		[]model.Teacher{{Id: "ada", Unavailable: []string{"tue-3"}}, {Id: "alan"}},
		[]model.Room{{Id: "S008"}, {Id: "S110"}},
		[]model.Period{
			{Id: "mon-1", Weekday: 0, Start: "07:00", End: "09:55", Weight: 5},
			{Id: "mon-2", Weekday: 0, Start: "10:05", End: "12:55", Weight: 4},
			{Id: "mon-3", Weekday: 0, Start: "13:05", End: "15:55", Weight: 3},
			{Id: "tue-3", Weekday: 1, Start: "13:05", End: "15:55", Weight: 3},
		},
	)
	require.NoError(t, err)
	return domain
}

func strictResult() *solver.Result {
	return &solver.Result{
		RunId:     "run",
		State:     solver.SucceededStrict,
		Objective: 13,
		Assignments: []model.Assignment{
			{Course: "ALGO", Class: "L1", Teacher: "ada", Room: "S008", Period: "mon-1"},
			{Course: "WEB", Class: "L1", Teacher: "alan", Room: "S008", Period: "mon-2"},
			{Course: "NET", Class: "L2", Teacher: "ada", Room: "S110", Period: "mon-2"},
		},
		Unmet: []model.Pair{},
	}
}

func TestExtract(t *testing.T) {
	//** Arrange
	domain := fixture(t)

	//** Act
	schedule, err := Extract(domain, strictResult())

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2"}, schedule.ClassOrder)
	assert.Equal(t, Stats{Pairs: 3, Scheduled: 3, Unmet: 0, Morning: 3}, schedule.Stats)
	assert.Equal(t, 1.0, schedule.Stats.Coverage())

	l1 := schedule.Classes["L1"]
	require.Len(t, l1.Days, 2)
	assert.Equal(t, "Monday", l1.Days[0].Name)
	assert.Equal(t, "Tuesday", l1.Days[1].Name)
	assert.Len(t, l1.Days[0].Slots, 3)
	assert.Len(t, l1.Days[1].Slots, 1)

	assert.Equal(t, &Cell{Course: "ALGO", Teacher: "ada", Room: "S008", Credits: 5}, l1.Days[0].Slots[0].Cell)
	assert.Equal(t, &Cell{Course: "WEB", Teacher: "alan", Room: "S008"}, l1.Days[0].Slots[1].Cell)
	assert.Nil(t, l1.Days[0].Slots[2].Cell)
	assert.Nil(t, l1.Days[1].Slots[0].Cell)

	slot, ok := schedule.Classes["L2"].Slot("mon-2")
	require.True(t, ok)
	assert.Equal(t, "NET", slot.Cell.Course)
	assert.Equal(t, "10:05", slot.Start)
}

func TestExtractIsStable(t *testing.T) {
	//** Arrange
	domain := fixture(t)

	//** Act
	first, err := Extract(domain, strictResult())
	require.NoError(t, err)
	second, err := Extract(domain, strictResult())
	require.NoError(t, err)

	//** Assert
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
	assert.Contains(t, string(firstJSON), `"state":"SUCCEEDED_STRICT"`)
	assert.Contains(t, string(firstJSON), `"classes":{"L1":`)
}

func TestExtractIsStableAcrossSolves(t *testing.T) {
	//** Arrange
	domain := fixture(t)
	orchestrator := solver.NewOrchestrator(solver.Options{}, nil, nil)
	outputs := make([]string, 0, 2)

	for range 2 {
		//** Act
		result, err := orchestrator.Solve(context.Background(), domain)
		require.NoError(t, err)
		schedule, err := Extract(domain, result)
		require.NoError(t, err)
		output, err := json.Marshal(schedule)
		require.NoError(t, err)
		outputs = append(outputs, string(output))
	}

	//** Assert
	assert.Equal(t, outputs[0], outputs[1])
	assert.NotContains(t, outputs[0], "run_id")
}

func TestExtractRelaxed(t *testing.T) {
	//** Arrange
	domain := fixture(t)
	result := strictResult()
	result.State = solver.SucceededRelaxed
	result.Assignments = result.Assignments[:2]
	result.Unmet = []model.Pair{{Course: "NET", Class: "L2"}}

	//** Act
	schedule, err := Extract(domain, result)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, []model.Pair{{Course: "NET", Class: "L2"}}, schedule.Unmet)
	assert.Equal(t, Stats{Pairs: 3, Scheduled: 2, Unmet: 1, Morning: 2}, schedule.Stats)
	assert.InDelta(t, 2.0/3.0, schedule.Stats.Coverage(), 1e-9)
}

func TestExtractFailed(t *testing.T) {
	domain := fixture(t)
	result := &solver.Result{State: solver.Failed, Unmet: domain.Pairs()}

	schedule, err := Extract(domain, result)

	require.NoError(t, err)
	assert.Equal(t, 3, schedule.Stats.Unmet)
	assert.Equal(t, 0, schedule.Stats.Scheduled)
}

func TestExtractionErrors(t *testing.T) {
	scenarios := []struct {
		name   string
		tamper func(result *solver.Result)
		reason string
	}{
		{"Not terminal", func(result *solver.Result) { result.State = solver.SearchStrict }, "not terminal"},
		{"Unknown course", func(result *solver.Result) { result.Assignments[0].Course = "MATH" }, "unknown course"},
		{"Unknown room", func(result *solver.Result) { result.Assignments[0].Room = "GYM" }, "unknown room"},
		{"Unknown period", func(result *solver.Result) { result.Assignments[0].Period = "sun-9" }, "unknown period"},
		{"Wrong class", func(result *solver.Result) { result.Assignments[0].Class = "L2" }, "belongs to class L1"},
		{"Wrong teacher", func(result *solver.Result) { result.Assignments[0].Teacher = "alan" }, "taught by ada"},
		{"Unavailable teacher", func(result *solver.Result) { result.Assignments[0].Period = "tue-3" }, "unavailable"},
		{"Class conflict", func(result *solver.Result) { result.Assignments[1].Period = "mon-1" }, "class L1 has two lessons"},
		{"Teacher conflict", func(result *solver.Result) { result.Assignments[2].Period = "mon-1" }, "teacher ada has two lessons"},
		{"Room conflict", func(result *solver.Result) { result.Assignments[2].Room = "S008" }, "room S008 has two lessons"},
		{"Duplicate pair", func(result *solver.Result) {
			result.Assignments = append(result.Assignments, model.Assignment{Course: "NET", Class: "L2", Teacher: "ada", Room: "S110", Period: "mon-3"})
		}, "more than once"},
		{"Strict missing pair", func(result *solver.Result) { result.Assignments = result.Assignments[:2] }, "leaves 1 pair(s) unscheduled"},
		{"Strict with unmet", func(result *solver.Result) { result.Unmet = []model.Pair{{Course: "NET", Class: "L2"}} }, "reports unmet"},
		{"Relaxed unmet mismatch", func(result *solver.Result) {
			result.State = solver.SucceededRelaxed
			result.Assignments = result.Assignments[:2]
		}, "unmet list"},
		{"Relaxed unmet duplicates", func(result *solver.Result) {
			result.State = solver.SucceededRelaxed
			result.Assignments = result.Assignments[:2]
			result.Unmet = []model.Pair{{Course: "NET", Class: "L2"}, {Course: "NET", Class: "L2"}}
		}, "unmet list"},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			//** Arrange
			domain := fixture(t)
			result := strictResult()
			scenario.tamper(result)

			//** Act
			schedule, err := Extract(domain, result)

			//** Assert
			assert.Nil(t, schedule)
			var extractionErr *ExtractionError
			require.True(t, errors.As(err, &extractionErr), "got %v", err)
			assert.Contains(t, extractionErr.Error(), scenario.reason)
		})
	}
}

func TestExtractSolverOutput(t *testing.T) {
	//** Arrange
	domain := fixture(t)
	result, err := solver.NewOrchestrator(solver.Options{Workers: 2}, nil, nil).Solve(context.Background(), domain)
	require.NoError(t, err)

	//** Act
	schedule, err := Extract(domain, result)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, solver.SucceededStrict, schedule.State)
	assert.Equal(t, 3, schedule.Stats.Scheduled)
	// Morning periods win: nothing lands in the afternoon
	for _, timetable := range schedule.Classes {
		for _, day := range timetable.Days {
			afternoon := slices.IndexFunc(day.Slots, func(slot Slot) bool { return slot.Start >= "12:00" && slot.Cell != nil })
			assert.Equal(t, -1, afternoon)
		}
	}
}
