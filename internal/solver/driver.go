package solver

import (
	"fmt"
	"math"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"

	"github.com/valter-silva-au/staffplan/internal/scheduling"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// ErrInvalidConfiguration marks input rejected before any model is built.
var ErrInvalidConfiguration = scheduling.ErrInvalidConfiguration

// EventLogger is the subset of the observability event log the solver needs.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Driver builds and solves scheduling models against an Engine.
type Driver struct {
	engine Engine
	params Params
	events EventLogger
	now    func() time.Time
}

// NewDriver creates a Driver. A nil events logger disables event emission.
func NewDriver(engine Engine, params Params, events EventLogger) *Driver {
	return &Driver{
		engine: engine,
		params: params,
		events: events,
		now:    time.Now,
	}
}

// Params returns the settings the driver solves with.
func (d *Driver) Params() Params { return d.params }

// phase describes one solve: the objective label it reports, hints to seed
// the engine with, and a prepare step that posts extra constraints and
// returns the expression to minimize. A nil expression solves for
// feasibility only.
type phase struct {
	index     int
	objective models.Objective
	hints     *models.Hints
	prepare   func(m *scheduling.Model) (cpmodel.LinearArgument, error)
}

// Solve validates p and minimizes a single objective.
func (d *Driver) Solve(p models.Problem, o models.Objective) (*models.Solution, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: unknown objective %q", ErrInvalidConfiguration, o)
	}
	if err := scheduling.Validate(p); err != nil {
		return nil, err
	}
	sol, err := d.run(p, phase{
		objective: o,
		prepare: func(m *scheduling.Model) (cpmodel.LinearArgument, error) {
			return m.ObjectiveExpr(o)
		},
	})
	if err != nil {
		return nil, err
	}
	sol.Phases = []models.PhaseResult{phaseResult(0, o, sol)}
	return sol, nil
}

// Verify checks that a stored solution still satisfies every constraint of p
// by pinning all of its decisions and solving for feasibility. The returned
// solution is infeasible when the stored schedule no longer fits.
func (d *Driver) Verify(p models.Problem, stored *models.Solution) (*models.Solution, error) {
	if err := scheduling.Validate(p); err != nil {
		return nil, err
	}
	if stored == nil || !stored.Found() {
		return nil, fmt.Errorf("verifying schedule: no solution to verify")
	}
	hints := stored.Hints
	if hints == nil {
		hints = HintsFromAssignments(p, stored.Tasks, stored.Workers)
	}
	return d.run(p, phase{
		objective: stored.Objective,
		prepare: func(m *scheduling.Model) (cpmodel.LinearArgument, error) {
			return nil, m.Pin(hints)
		},
	})
}

// run builds a fresh model for p, prepares it per ph and solves it within the
// time budget. With a solution limit the solve is repeated, each time
// stopping at the first solution and requiring a strictly better objective,
// until the limit, the budget or a proof of optimality is reached.
func (d *Driver) run(p models.Problem, ph phase) (*models.Solution, error) {
	started := d.now()
	budget := d.params.TimeBudgetFor(p.NumTasks())
	deadline := started.Add(budget)

	m := scheduling.Build(p)
	expr, err := ph.prepare(m)
	if err != nil {
		return nil, err
	}
	if expr != nil {
		m.Builder.Minimize(expr)
	}
	m.ApplyHints(ph.hints)

	d.logEvent("solve.started", map[string]any{
		"phase":     ph.index,
		"objective": string(ph.objective),
		"tasks":     p.NumTasks(),
		"workers":   p.NumWorkers(),
		"horizon":   m.NumDays,
		"budget_s":  budget.Seconds(),
	})

	var best *cmpb.CpSolverResponse
	var status models.SolveStatus
	if d.params.SolutionLimit <= 0 || expr == nil {
		resp, err := d.solveModel(m, budget, false)
		if err != nil {
			return nil, err
		}
		status = statusOf(resp.GetStatus())
		if status.HasSolution() {
			best = resp
		}
	} else {
		best, status, err = d.tighten(m, expr, deadline)
		if err != nil {
			return nil, err
		}
	}

	var sol *models.Solution
	if best != nil {
		sol = Extract(m, best)
		if expr != nil {
			sol.ObjectiveValue = objectiveValue(best)
		}
	} else {
		sol = &models.Solution{}
	}
	sol.Status = status
	sol.Objective = ph.objective
	sol.WallTime = d.now().Sub(started)

	d.logEvent("solve.finished", map[string]any{
		"phase":       ph.index,
		"objective":   string(ph.objective),
		"status":      string(sol.Status),
		"value":       sol.ObjectiveValue,
		"duration":    sol.Duration,
		"cost":        sol.Cost,
		"resources":   sol.Resources,
		"wall_time_s": sol.WallTime.Seconds(),
	})

	if sol.Status == models.StatusModelInvalid {
		return nil, fmt.Errorf("solving %s: engine rejected the model", ph.objective)
	}
	return sol, nil
}

// tighten runs the capped improvement loop and returns the last solution
// found with its status.
func (d *Driver) tighten(m *scheduling.Model, expr cpmodel.LinearArgument, deadline time.Time) (*cmpb.CpSolverResponse, models.SolveStatus, error) {
	var best *cmpb.CpSolverResponse
	status := models.StatusUnknown

	for i := 0; i < d.params.SolutionLimit; i++ {
		remaining := deadline.Sub(d.now())
		if remaining <= 0 {
			break
		}
		resp, err := d.solveModel(m, remaining, true)
		if err != nil {
			return nil, "", err
		}

		switch s := statusOf(resp.GetStatus()); s {
		case models.StatusOptimal:
			return resp, models.StatusOptimal, nil
		case models.StatusFeasible:
			best, status = resp, models.StatusFeasible
			m.Builder.AddLessOrEqual(expr, cpmodel.NewConstant(objectiveValue(resp)-1))
			m.ApplyHints(HintsFromResponse(m, resp))
		case models.StatusInfeasible:
			if best != nil {
				// Nothing beats the incumbent.
				return best, models.StatusOptimal, nil
			}
			return nil, models.StatusInfeasible, nil
		default:
			if best == nil {
				return nil, s, nil
			}
			return best, status, nil
		}
	}
	return best, status, nil
}

func (d *Driver) solveModel(m *scheduling.Model, budget time.Duration, firstOnly bool) (*cmpb.CpSolverResponse, error) {
	model, err := m.Builder.Model()
	if err != nil {
		return nil, fmt.Errorf("instantiating model: %w", err)
	}
	resp, err := d.engine.Solve(model, EngineParams{
		MaxTime:                budget,
		NumWorkers:             d.params.NumSearchWorkers,
		LogSearchProgress:      d.params.LogSearchProgress,
		StopAfterFirstSolution: firstOnly,
		RandomSeed:             d.params.RandomSeed,
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (d *Driver) logEvent(eventType string, data map[string]any) {
	if d.events == nil {
		return
	}
	_ = d.events.LogEvent(eventType, data)
}

func objectiveValue(resp *cmpb.CpSolverResponse) int64 {
	return int64(math.Round(resp.GetObjectiveValue()))
}

func phaseResult(index int, o models.Objective, sol *models.Solution) models.PhaseResult {
	return models.PhaseResult{
		Index:     index,
		Objective: o,
		Status:    sol.Status,
		Value:     sol.ObjectiveValue,
		Duration:  sol.Duration,
		Cost:      sol.Cost,
		Resources: sol.Resources,
		WallTime:  sol.WallTime,
	}
}
