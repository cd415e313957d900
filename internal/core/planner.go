package core

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/valter-silva-au/staffplan/internal/calendar"
	"github.com/valter-silva-au/staffplan/internal/solver"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// Mode is the way a run combines its objectives.
type Mode string

const (
	ModeSingle        Mode = "single"
	ModeLexicographic Mode = "lexicographic"
	ModeWeighted      Mode = "weighted"
)

// SolveRequest is one planning run. Exactly one of Objectives and Weights
// must be set; a single objective runs a plain solve.
type SolveRequest struct {
	Problem    models.Problem
	Objectives []models.Objective
	Weights    map[models.Objective]float64
	// MaxTime overrides the configured per-solve budget when positive.
	MaxTime time.Duration
	// Digest identifies the input; it is derived from Problem when empty.
	Digest string
}

// SolveResult is the outcome of a planning run.
type SolveResult struct {
	RunID    string
	Mode     Mode
	Digest   string
	Solution *models.Solution
}

// TaskEstimate is the derived duration of one task.
type TaskEstimate struct {
	ID          string `json:"id"`
	EffortHours int64  `json:"effort_hours"`
	Days        int64  `json:"days"`
}

// Estimate lists task durations and the horizon they imply.
type Estimate struct {
	Tasks   []TaskEstimate `json:"tasks"`
	Horizon int64          `json:"horizon"`
}

// Planner runs solves in the mode their request implies.
type Planner interface {
	Solve(req SolveRequest) (*SolveResult, error)
	Verify(p models.Problem, stored *models.Solution) (*models.Solution, error)
	Estimate(tasks []models.Task) Estimate
}

type planner struct {
	engine solver.Engine
	params solver.Params
	events EventLogger
	newID  func() string
}

// NewPlanner creates a Planner that solves on engine with params. A nil
// events logger disables event emission.
func NewPlanner(engine solver.Engine, params solver.Params, events EventLogger) Planner {
	return &planner{
		engine: engine,
		params: params,
		events: events,
		newID:  func() string { return uuid.NewString() },
	}
}

// ModeFor returns the mode a request runs in.
func ModeFor(req SolveRequest) (Mode, error) {
	switch {
	case len(req.Weights) > 0 && len(req.Objectives) > 0:
		return "", fmt.Errorf("%w: give either objectives or weights, not both", solver.ErrInvalidConfiguration)
	case len(req.Weights) > 0:
		return ModeWeighted, nil
	case len(req.Objectives) == 1:
		return ModeSingle, nil
	case len(req.Objectives) > 1:
		return ModeLexicographic, nil
	}
	return "", fmt.Errorf("%w: no objectives given", solver.ErrInvalidConfiguration)
}

func (pl *planner) Solve(req SolveRequest) (*SolveResult, error) {
	mode, err := ModeFor(req)
	if err != nil {
		return nil, err
	}
	digest := req.Digest
	if digest == "" {
		if digest, err = ProblemDigest(req.Problem); err != nil {
			return nil, err
		}
	}

	res := &SolveResult{RunID: pl.newID(), Mode: mode, Digest: digest}
	d := solver.NewDriver(pl.engine, pl.paramsFor(req), pl.events)

	switch mode {
	case ModeSingle:
		res.Solution, err = d.Solve(req.Problem, req.Objectives[0])
	case ModeLexicographic:
		res.Solution, err = d.SolveLexicographic(req.Problem, req.Objectives)
	case ModeWeighted:
		res.Solution, err = d.SolveWeighted(req.Problem, req.Weights)
	}
	if err != nil {
		return nil, fmt.Errorf("planning run %s: %w", res.RunID, err)
	}

	pl.logEvent("plan.completed", map[string]any{
		"run_id":    res.RunID,
		"mode":      string(mode),
		"digest":    digest,
		"status":    string(res.Solution.Status),
		"phases":    len(res.Solution.Phases),
		"duration":  res.Solution.Duration,
		"cost":      res.Solution.Cost,
		"resources": res.Solution.Resources,
	})
	return res, nil
}

func (pl *planner) Verify(p models.Problem, stored *models.Solution) (*models.Solution, error) {
	return solver.NewDriver(pl.engine, pl.params, pl.events).Verify(p, stored)
}

func (pl *planner) Estimate(tasks []models.Task) Estimate {
	est := Estimate{Tasks: make([]TaskEstimate, len(tasks)), Horizon: calendar.Horizon(tasks)}
	for i, t := range tasks {
		est.Tasks[i] = TaskEstimate{ID: t.ID, EffortHours: t.EffortHours, Days: calendar.TaskDays(t)}
	}
	return est
}

// paramsFor applies a request's budget override. An override replaces the
// bucketed budgets as well.
func (pl *planner) paramsFor(req SolveRequest) solver.Params {
	params := pl.params
	if req.MaxTime > 0 {
		params.MaxTime = req.MaxTime
		params.Buckets = nil
		params.DefaultBucket = 0
	}
	return params
}

func (pl *planner) logEvent(eventType string, data map[string]any) {
	if pl.events == nil {
		return
	}
	_ = pl.events.LogEvent(eventType, data)
}

// ProblemDigest returns the hex BLAKE3 hash of the problem's JSON encoding.
func ProblemDigest(p models.Problem) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding problem for digest: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
