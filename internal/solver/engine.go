// Package solver drives CP-SAT solves of scheduling models: single-objective
// runs, lexicographic and weighted multi-objective orchestration, and
// verification of stored schedules.
package solver

import (
	"fmt"
	"time"

	log "github.com/golang/glog"
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"google.golang.org/protobuf/proto"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// EngineParams are the per-call settings handed to the solving engine.
type EngineParams struct {
	MaxTime                time.Duration
	NumWorkers             int
	LogSearchProgress      bool
	StopAfterFirstSolution bool
	RandomSeed             int
}

// Engine solves an instantiated CP model. It blocks until the engine proves
// optimality or infeasibility, or the time budget elapses.
type Engine interface {
	Solve(model *cmpb.CpModelProto, params EngineParams) (*cmpb.CpSolverResponse, error)
}

// cpsatEngine runs the OR-tools CP-SAT solver in-process.
type cpsatEngine struct{}

// NewCPSATEngine returns an Engine backed by OR-tools CP-SAT.
func NewCPSATEngine() Engine {
	return cpsatEngine{}
}

func (cpsatEngine) Solve(model *cmpb.CpModelProto, p EngineParams) (*cmpb.CpSolverResponse, error) {
	params := &sppb.SatParameters{
		LogSearchProgress: proto.Bool(p.LogSearchProgress),
		RandomSeed:        proto.Int32(int32(p.RandomSeed)),
	}
	if p.MaxTime > 0 {
		params.MaxTimeInSeconds = proto.Float64(p.MaxTime.Seconds())
	}
	if p.NumWorkers > 0 {
		params.NumWorkers = proto.Int32(int32(p.NumWorkers))
	}
	if p.StopAfterFirstSolution {
		params.StopAfterFirstSolution = proto.Bool(true)
	}

	log.V(1).Infof("cp-sat: %d variables, %d constraints, budget %s, workers %d",
		len(model.GetVariables()), len(model.GetConstraints()), p.MaxTime, p.NumWorkers)

	resp, err := cpmodel.SolveCpModelWithParameters(model, params)
	if err != nil {
		return nil, fmt.Errorf("running cp-sat: %w", err)
	}

	log.V(1).Infof("cp-sat: status %s, objective %.0f, wall time %.3fs",
		resp.GetStatus(), resp.GetObjectiveValue(), resp.GetWallTime())
	return resp, nil
}

// statusOf maps an engine status onto the solution status.
func statusOf(s cmpb.CpSolverStatus) models.SolveStatus {
	switch s {
	case cmpb.CpSolverStatus_OPTIMAL:
		return models.StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		return models.StatusFeasible
	case cmpb.CpSolverStatus_INFEASIBLE:
		return models.StatusInfeasible
	case cmpb.CpSolverStatus_MODEL_INVALID:
		return models.StatusModelInvalid
	default:
		return models.StatusUnknown
	}
}
