package scheduling

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// ApplyHints seeds the engine with a previous solve's assignment. Entries
// outside the model's dimensions are ignored, so hints from a model with a
// shorter horizon are still usable.
func (m *Model) ApplyHints(h *models.Hints) {
	if h == nil {
		return
	}
	hint := &cpmodel.Hint{
		Ints:  make(map[cpmodel.IntVar]int64),
		Bools: make(map[cpmodel.BoolVar]bool),
	}

	for t := 0; t < m.NumTasks() && t < len(h.Starts); t++ {
		hint.Ints[m.Starts[t]] = h.Starts[t]
	}
	for t := 0; t < m.NumTasks() && t < len(h.TaskWorker); t++ {
		for w := 0; w < m.NumWorkers() && w < len(h.TaskWorker[t]); w++ {
			hint.Bools[m.TaskWorker[t][w]] = h.TaskWorker[t][w]
		}
	}
	for t := 0; t < m.NumTasks() && t < len(h.TaskDayWorker); t++ {
		for d := 0; int64(d) < m.NumDays && d < len(h.TaskDayWorker[t]); d++ {
			for w := 0; w < m.NumWorkers() && w < len(h.TaskDayWorker[t][d]); w++ {
				hint.Bools[m.TaskDayWorker[t][d][w]] = h.TaskDayWorker[t][d][w]
			}
		}
	}

	m.Builder.SetHint(hint)
}

// Pin fixes every hinted variable to its hinted value. Solving a pinned model
// checks whether a stored assignment satisfies the current constraints.
func (m *Model) Pin(h *models.Hints) error {
	if h == nil {
		return fmt.Errorf("pinning model: no assignment given")
	}
	if len(h.Starts) != m.NumTasks() || len(h.TaskWorker) != m.NumTasks() {
		return fmt.Errorf("pinning model: assignment covers %d tasks, model has %d", len(h.Starts), m.NumTasks())
	}

	cp := m.Builder
	for t := range m.Problem.Tasks {
		cp.AddEquality(m.Starts[t], cpmodel.NewConstant(h.Starts[t]))
		if len(h.TaskWorker[t]) != m.NumWorkers() {
			return fmt.Errorf("pinning model: task %d names %d workers, model has %d", t, len(h.TaskWorker[t]), m.NumWorkers())
		}
		for w := range m.Problem.Resources {
			cp.AddEquality(m.TaskWorker[t][w], boolConst(h.TaskWorker[t][w]))
		}
	}

	for t := 0; t < len(h.TaskDayWorker) && t < m.NumTasks(); t++ {
		for d := 0; d < len(h.TaskDayWorker[t]); d++ {
			if int64(d) >= m.NumDays {
				if anyTrue(h.TaskDayWorker[t][d]) {
					return fmt.Errorf("pinning model: task %d works on day %d beyond horizon %d", t, d, m.NumDays)
				}
				continue
			}
			for w := 0; w < m.NumWorkers() && w < len(h.TaskDayWorker[t][d]); w++ {
				cp.AddEquality(m.TaskDayWorker[t][d][w], boolConst(h.TaskDayWorker[t][d][w]))
			}
		}
	}

	m.ApplyHints(h)
	return nil
}

// RequireValue constrains objective o to equal value.
func (m *Model) RequireValue(o models.Objective, value int64) error {
	expr, err := m.ObjectiveExpr(o)
	if err != nil {
		return err
	}
	m.Builder.AddEquality(expr, cpmodel.NewConstant(value))
	return nil
}

// RequireAtMost constrains objective o to be no greater than value.
func (m *Model) RequireAtMost(o models.Objective, value int64) error {
	expr, err := m.ObjectiveExpr(o)
	if err != nil {
		return err
	}
	m.Builder.AddLessOrEqual(expr, cpmodel.NewConstant(value))
	return nil
}

// Deviation creates a variable in [0, maxDelta] that sandwiches objective o
// within [target - deviation, target + deviation].
func (m *Model) Deviation(o models.Objective, target, maxDelta int64) (cpmodel.IntVar, error) {
	expr, err := m.ObjectiveExpr(o)
	if err != nil {
		return cpmodel.IntVar{}, err
	}
	if maxDelta < 0 {
		maxDelta = 0
	}

	cp := m.Builder
	delta := cp.NewIntVarFromDomain(cpmodel.NewDomain(0, maxDelta)).WithName(fmt.Sprintf("delta_%s", o))
	cp.AddGreaterOrEqual(expr, cpmodel.NewLinearExpr().AddConstant(target).AddTerm(delta, -1))
	cp.AddLessOrEqual(expr, cpmodel.NewLinearExpr().AddConstant(target).Add(delta))
	return delta, nil
}

func boolConst(b bool) *cpmodel.LinearExpr {
	if b {
		return cpmodel.NewConstant(1)
	}
	return cpmodel.NewConstant(0)
}

func anyTrue(bs []bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}
