package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/timetabler/pkg/constraint"
	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/limaJavier/timetabler/pkg/sat"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Orchestrator drives the strict-then-relaxed search. It keeps no state between solves.
type Orchestrator struct {
	options  Options
	logger   *zap.Logger
	observer Observer
}

func NewOrchestrator(options Options, logger *zap.Logger, observer Observer) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Orchestrator{
		options:  options.withDefaults(),
		logger:   logger,
		observer: observer,
	}
}

// phase is the outcome of searching one model
type phase struct {
	model    *constraint.Model
	report   PhaseReport
	solution []int
}

// Solve runs the state machine on the domain. Pre-search errors (a strict *constraint.ModelError unless
// RelaxOnModelError is set) are returned as errors; every other outcome, FAILED included, is a Result.
func (orchestrator *Orchestrator) Solve(ctx context.Context, domain *model.Domain) (*Result, error) {
	result := &Result{
		RunId:       uuid.NewString(),
		State:       Init,
		Assignments: []model.Assignment{},
		Unmet:       []model.Pair{},
		Phases:      []PhaseReport{},
	}
	logger := orchestrator.logger.With(zap.String("run", result.RunId))
	transition := func(state State) {
		logger.Debug("transition", zap.Stringer("from", result.State), zap.Stringer("to", state))
		result.State = state
	}

	//** Strict
	transition(SearchStrict)
	strict, err := orchestrator.strict(ctx, domain, logger)
	var modelErr *constraint.ModelError
	if errors.As(err, &modelErr) {
		if !orchestrator.options.RelaxOnModelError {
			return nil, err
		}
		logger.Warn("strict model cannot be built, relaxing", zap.Error(err))
		result.Diagnostics = append(result.Diagnostics, unschedulable(modelErr.Pairs)...)
		orchestrator.record(result, PhaseReport{Mode: constraint.Strict, Outcome: Unbuildable})
	} else if err != nil {
		return nil, err
	} else {
		orchestrator.record(result, strict.report)
		if strict.solution != nil {
			transition(SucceededStrict)
			orchestrator.finish(result, strict)
			return result, nil
		}
		if strict.report.Outcome == Infeasible {
			result.Diagnostics = append(result.Diagnostics, orchestrator.diagnose(strict.model, logger)...)
		}
	}

	//** Relaxed
	transition(SearchRelaxed)
	relaxed, err := orchestrator.relaxed(ctx, domain, logger)
	if err != nil {
		return nil, err
	}
	orchestrator.record(result, relaxed.report)

	scheduled := lo.CountBy(relaxed.solution, func(choice int) bool { return choice >= 0 })
	if relaxed.solution == nil || (scheduled == 0 && len(relaxed.model.Requirements) > 0) {
		transition(Failed)
		if len(result.Diagnostics) == 0 {
			result.Diagnostics = orchestrator.diagnose(relaxed.model, logger)
			result.Diagnostics = append(result.Diagnostics, unschedulable(relaxed.model.Unschedulable())...)
		}
		result.Unmet = domain.Pairs()
		orchestrator.observer.Solved(result)
		logger.Warn("no schedule found", zap.Int("unmet", len(result.Unmet)))
		return result, nil
	}

	transition(SucceededRelaxed)
	orchestrator.finish(result, relaxed)
	return result, nil
}

func (orchestrator *Orchestrator) strict(ctx context.Context, domain *model.Domain, logger *zap.Logger) (phase, error) {
	m, err := constraint.Build(domain, constraint.Strict, constraint.Options{PenaltyMultiplier: orchestrator.options.PenaltyMultiplier})
	if err != nil {
		return phase{}, fmt.Errorf("error while building strict model: %w", err)
	}
	return orchestrator.search(ctx, m, orchestrator.options.StrictBudget, logger), nil
}

func (orchestrator *Orchestrator) relaxed(ctx context.Context, domain *model.Domain, logger *zap.Logger) (phase, error) {
	m, err := constraint.Build(domain, constraint.Relaxed, constraint.Options{PenaltyMultiplier: orchestrator.options.PenaltyMultiplier})
	if err != nil {
		return phase{}, fmt.Errorf("error while building relaxed model: %w", err)
	}
	return orchestrator.search(ctx, m, orchestrator.options.RelaxedBudget, logger), nil
}

// search runs one phase under its budget: SAT pre-check (strict only), portfolio branch-and-bound, then,
// once the optimum is proven, the canonical pass that applies the tie-break
func (orchestrator *Orchestrator) search(ctx context.Context, m *constraint.Model, budget time.Duration, logger *zap.Logger) phase {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	start := time.Now()
	logger = logger.With(zap.Stringer("mode", m.Mode))
	logger.Info("searching",
		zap.Int("requirements", len(m.Requirements)),
		zap.Int("variables", len(m.Variables)),
		zap.Int("groups", len(m.Groups)),
		zap.Duration("budget", budget),
	)
	current := phase{
		model:  m,
		report: PhaseReport{Mode: m.Mode, Workers: orchestrator.options.Workers},
	}

	//** SAT pre-check
	var warm []int
	if m.Mode == constraint.Strict {
		solution, err := orchestrator.options.SATSolver.Solve(ctx, constraint.ToSAT(m))
		switch {
		case err == nil && solution == nil:
			current.report.SAT = "unsat"
			current.report.Outcome = Infeasible
			current.report.Duration = time.Since(start)
			logger.Info("strict model refuted by the SAT solver", zap.Duration("duration", current.report.Duration))
			return current
		case err == nil:
			current.report.SAT = "sat"
			warm = warmStart(m, solution)
		default:
			current.report.SAT = "undecided"
			if !errors.Is(err, sat.ErrUndecided) {
				logger.Warn("SAT pre-check failed", zap.Error(err))
			}
		}
	}

	//** Branch-and-bound
	portfolio := runPortfolio(ctx, m, orchestrator.options.Workers, warm)
	current.report.Nodes = portfolio.nodes
	current.solution = portfolio.solution

	switch {
	case portfolio.proven && portfolio.solution == nil:
		current.report.Outcome = Infeasible
	case portfolio.proven:
		current.report.Outcome = Optimal
		canonical, nodes, err := canonicalize(ctx, m, portfolio.value)
		current.report.Nodes += nodes
		if err == nil && canonical != nil {
			current.solution = canonical
		} else {
			logger.Warn("tie-break pass did not complete, keeping the incumbent", zap.Error(err))
		}
	case portfolio.solution != nil:
		current.report.Outcome = Feasible
	default:
		current.report.Outcome = Timeout
	}

	if current.solution != nil {
		current.report.Objective = m.Objective(selected(current.solution))
	}
	current.report.Duration = time.Since(start)
	logger.Info("phase finished",
		zap.String("outcome", string(current.report.Outcome)),
		zap.Int64("objective", current.report.Objective),
		zap.Uint64("nodes", current.report.Nodes),
		zap.Bool("proven", current.report.Proven()),
		zap.Duration("duration", current.report.Duration),
	)
	return current
}

func (orchestrator *Orchestrator) record(result *Result, report PhaseReport) {
	result.Phases = append(result.Phases, report)
	orchestrator.observer.PhaseFinished(report)
}

// finish fills the result with the winning solution of the phase
func (orchestrator *Orchestrator) finish(result *Result, winner phase) {
	m := winner.model
	result.Objective = m.Objective(selected(winner.solution))
	for requirement, choice := range winner.solution {
		if choice >= 0 {
			result.Assignments = append(result.Assignments, m.Assignment(choice))
		} else {
			result.Unmet = append(result.Unmet, m.Requirements[requirement].Pair)
		}
	}
	orchestrator.observer.Solved(result)
	orchestrator.logger.Info("solved",
		zap.String("run", result.RunId),
		zap.Stringer("state", result.State),
		zap.Int64("objective", result.Objective),
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("unmet", len(result.Unmet)),
	)
}

func (orchestrator *Orchestrator) diagnose(m *constraint.Model, logger *zap.Logger) []constraint.Conflict {
	conflicts, err := constraint.Diagnose(m)
	if err != nil {
		logger.Error("diagnostic failed", zap.Error(err))
		return nil
	}
	for _, conflict := range conflicts {
		logger.Info("conflict", zap.Stringer("conflict", conflict), zap.Any("unmatched", conflict.Unmatched))
	}
	return conflicts
}

// unschedulable reports pairs without any feasible variable as single-pair conflicts
func unschedulable(pairs []model.Pair) []constraint.Conflict {
	return lo.Map(pairs, func(pair model.Pair, _ int) constraint.Conflict {
		return constraint.Conflict{
			Kind:      "pair",
			Id:        pair.Class + "/" + pair.Course,
			Required:  1,
			Unmatched: []model.Pair{pair},
		}
	})
}

// warmStart converts a SAT model into a solution
func warmStart(m *constraint.Model, solution sat.SATSolution) []int {
	warm := make([]int, len(m.Requirements))
	for i := range warm {
		warm[i] = unmet
	}
	for _, literal := range solution.Positives() {
		variable := int(literal) - 1
		if variable < len(m.Variables) {
			warm[m.Variables[variable].Requirement] = variable
		}
	}
	return warm
}

func selected(solution []int) []int {
	return lo.Filter(solution, func(choice int, _ int) bool { return choice >= 0 })
}
