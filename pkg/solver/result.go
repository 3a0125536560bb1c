package solver

import (
	"time"

	"github.com/limaJavier/timetabler/pkg/constraint"
	"github.com/limaJavier/timetabler/pkg/model"
)

type Outcome string

const (
	Optimal     Outcome = "optimal"     // Best objective proven
	Feasible    Outcome = "feasible"    // Incumbent found, budget exhausted before the proof
	Infeasible  Outcome = "infeasible"  // No schedule exists for the phase's model
	Timeout     Outcome = "timeout"     // Budget exhausted without incumbent
	Unbuildable Outcome = "model error" // Some pair has no feasible variable
)

// PhaseReport summarizes one search phase
type PhaseReport struct {
	Mode      constraint.Mode `json:"mode"`
	Outcome   Outcome         `json:"outcome"`
	Objective int64           `json:"objective"`
	Nodes     uint64          `json:"nodes"`
	Workers   int             `json:"workers"`
	SAT       string          `json:"sat,omitempty"` // Strict pre-check verdict: "sat", "unsat" or "undecided"
	Duration  time.Duration   `json:"duration"`
}

func (report PhaseReport) Proven() bool {
	return report.Outcome == Optimal || report.Outcome == Infeasible
}

// Result is the terminal, fully reported outcome of a solve. FAILED is a Result, not an error.
type Result struct {
	RunId       string                `json:"run_id"`
	State       State                 `json:"state"`
	Objective   int64                 `json:"objective"`
	Assignments []model.Assignment    `json:"assignments"`
	Unmet       []model.Pair          `json:"unmet"`
	Diagnostics []constraint.Conflict `json:"diagnostics,omitempty"`
	Phases      []PhaseReport         `json:"phases"`
}
