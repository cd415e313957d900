package scheduling

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// Strategy turns the shared variable space into one scalar expression to
// minimize. Implementations may add auxiliary variables to the model.
type Strategy interface {
	Objective() models.Objective
	Expression(m *Model) cpmodel.LinearArgument
}

// StrategyFor returns the strategy that minimizes the given objective.
func StrategyFor(o models.Objective) (Strategy, error) {
	switch o {
	case models.ObjectiveCost:
		return costStrategy{}, nil
	case models.ObjectiveDuration:
		return durationStrategy{}, nil
	case models.ObjectiveResources:
		return resourcesStrategy{}, nil
	}
	return nil, fmt.Errorf("%w: unknown objective %q", ErrInvalidConfiguration, o)
}

// ObjectiveExpr returns the expression of objective o, building it on first
// use. Later calls reuse the same auxiliary variables, so an objective can be
// both constrained and minimized in one model.
func (m *Model) ObjectiveExpr(o models.Objective) (cpmodel.LinearArgument, error) {
	if expr, ok := m.objectives[o]; ok {
		return expr, nil
	}
	s, err := StrategyFor(o)
	if err != nil {
		return nil, err
	}
	expr := s.Expression(m)
	m.objectives[o] = expr
	return expr, nil
}

// costStrategy sums rate * effort over the aggregate assignment booleans.
// Only the assignee's term is non-zero.
type costStrategy struct{}

func (costStrategy) Objective() models.Objective { return models.ObjectiveCost }

func (costStrategy) Expression(m *Model) cpmodel.LinearArgument {
	expr := cpmodel.NewLinearExpr()
	for t, task := range m.Problem.Tasks {
		for w, r := range m.Problem.Resources {
			expr.AddTerm(m.TaskWorker[t][w], task.EffortHours*r.CostPerHour)
		}
	}
	return expr
}

// resourcesStrategy counts workers with at least one task.
type resourcesStrategy struct{}

func (resourcesStrategy) Objective() models.Objective { return models.ObjectiveResources }

func (resourcesStrategy) Expression(m *Model) cpmodel.LinearArgument {
	cp := m.Builder
	zero, one := cpmodel.NewConstant(0), cpmodel.NewConstant(1)

	expr := cpmodel.NewLinearExpr()
	for w := 0; w < m.NumWorkers(); w++ {
		used := cp.NewBoolVar().WithName(fmt.Sprintf("worker%d_is_used", w))

		tasks := cpmodel.NewLinearExpr()
		for t := range m.Problem.Tasks {
			tasks.Add(m.TaskWorker[t][w])
		}
		cp.AddGreaterOrEqual(tasks, one).OnlyEnforceIf(used)
		cp.AddEquality(tasks, zero).OnlyEnforceIf(used.Not())

		expr.Add(used)
	}
	return expr
}

// durationStrategy bounds every task end by a single makespan variable.
type durationStrategy struct{}

func (durationStrategy) Objective() models.Objective { return models.ObjectiveDuration }

func (durationStrategy) Expression(m *Model) cpmodel.LinearArgument {
	cp := m.Builder
	makespan := cp.NewIntVarFromDomain(cpmodel.NewDomain(0, m.NumDays)).WithName("root_end")
	for t := range m.Problem.Tasks {
		cp.AddLessOrEqual(m.End(t), makespan)
	}
	return makespan
}
