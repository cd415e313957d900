package models

import "time"

// SolveStatus is the outcome reported by the solving engine.
type SolveStatus string

const (
	StatusOptimal      SolveStatus = "optimal"
	StatusFeasible     SolveStatus = "feasible"
	StatusInfeasible   SolveStatus = "infeasible"
	StatusUnknown      SolveStatus = "unknown"
	StatusModelInvalid SolveStatus = "model_invalid"
)

// HasSolution reports whether the status carries a concrete assignment.
func (s SolveStatus) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// TaskAssignment is the solved timing and assignee of a single task.
type TaskAssignment struct {
	Task   int   `yaml:"task" json:"task"`
	Start  int64 `yaml:"start" json:"start"`
	End    int64 `yaml:"end" json:"end"`
	Worker int   `yaml:"worker" json:"worker"`
}

// WorkerDay is one day of work for a worker.
type WorkerDay struct {
	Day  int64 `yaml:"day" json:"day"`
	Task int   `yaml:"task" json:"task"`
}

// PhaseResult records one solve inside an orchestrated run.
type PhaseResult struct {
	Index     int         `yaml:"index" json:"index"`
	Objective Objective   `yaml:"objective" json:"objective"`
	Status    SolveStatus `yaml:"status" json:"status"`
	Value     int64       `yaml:"value" json:"value"`
	// Realized values of every objective in the phase's solution.
	Duration  int64         `yaml:"duration" json:"duration"`
	Cost      int64         `yaml:"cost" json:"cost"`
	Resources int           `yaml:"resources" json:"resources"`
	WallTime  time.Duration `yaml:"wall_time" json:"wall_time"`
}

// Realized returns the realized value of objective o in the phase.
func (r PhaseResult) Realized(o Objective) int64 {
	switch o {
	case ObjectiveCost:
		return r.Cost
	case ObjectiveDuration:
		return r.Duration
	case ObjectiveResources:
		return int64(r.Resources)
	}
	return r.Value
}

// Hints is the full variable assignment of a solve, used to warm-start the
// next one. Indices follow the model: Starts[t], TaskWorker[t][w],
// TaskDayWorker[t][d][w].
type Hints struct {
	Starts        []int64    `json:"-" yaml:"-"`
	TaskWorker    [][]bool   `json:"-" yaml:"-"`
	TaskDayWorker [][][]bool `json:"-" yaml:"-"`
}

// Solution is the structured result of a solve. When Found is false it carries
// no assignments.
type Solution struct {
	Status    SolveStatus `yaml:"status" json:"status"`
	Objective Objective   `yaml:"objective" json:"objective"`
	// ObjectiveValue is the value of the minimized expression.
	ObjectiveValue int64 `yaml:"objective_value" json:"objective_value"`

	Tasks   []TaskAssignment `yaml:"tasks,omitempty" json:"tasks,omitempty"`
	Workers [][]WorkerDay    `yaml:"workers,omitempty" json:"workers,omitempty"`

	Duration  int64 `yaml:"duration" json:"duration"`
	Cost      int64 `yaml:"cost" json:"cost"`
	Resources int   `yaml:"resources" json:"resources"`

	Phases   []PhaseResult `yaml:"phases,omitempty" json:"phases,omitempty"`
	WallTime time.Duration `yaml:"wall_time" json:"wall_time"`

	Hints *Hints `yaml:"-" json:"-"`
}

// Found reports whether the solution holds a concrete assignment.
func (s *Solution) Found() bool {
	return s != nil && s.Status.HasSolution()
}

// Optimal reports whether the engine proved the solution optimal.
func (s *Solution) Optimal() bool {
	return s != nil && s.Status == StatusOptimal
}

// Value returns the realized value of the given objective.
func (s *Solution) Value(o Objective) int64 {
	switch o {
	case ObjectiveCost:
		return s.Cost
	case ObjectiveDuration:
		return s.Duration
	case ObjectiveResources:
		return int64(s.Resources)
	}
	return s.ObjectiveValue
}
