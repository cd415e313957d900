package scheduling

import (
	"errors"
	"fmt"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// ErrInvalidConfiguration marks input that is rejected before any model is
// built. Infeasible but well-formed input is not an error.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Validate checks that every index in p is in range and that the constraint
// data is well formed. A fixed assignment to a worker lacking the task's
// required skill is rejected here rather than left to the solver.
func Validate(p models.Problem) error {
	numTasks, numWorkers := len(p.Tasks), len(p.Resources)

	for w, r := range p.Resources {
		if r.CostPerHour < 0 {
			return invalidf("resource %d (%s) has negative cost %d", w, r.Label(), r.CostPerHour)
		}
	}

	for t, task := range p.Tasks {
		if task.EffortHours < 0 {
			return invalidf("task %d (%s) has negative effort %d", t, task.Label(), task.EffortHours)
		}
		for _, dep := range task.DependsOn {
			if dep < 0 || dep >= numTasks {
				return invalidf("task %d (%s) depends on unknown task index %d", t, task.Label(), dep)
			}
		}
	}

	fixed := make(map[int]int, len(p.Fixed))
	for _, fa := range p.Fixed {
		if fa.Task < 0 || fa.Task >= numTasks {
			return invalidf("fixed assignment names unknown task index %d", fa.Task)
		}
		if fa.Resource < 0 || fa.Resource >= numWorkers {
			return invalidf("fixed assignment names unknown resource index %d", fa.Resource)
		}
		task, r := p.Tasks[fa.Task], p.Resources[fa.Resource]
		if !r.CanPerform(task) {
			return invalidf("task %s is fixed to %s, who lacks skill %q", task.Label(), r.Label(), task.Skill)
		}
		if prev, ok := fixed[fa.Task]; ok && prev != fa.Resource {
			return invalidf("task %s is fixed to both %s and %s", task.Label(), p.Resources[prev].Label(), r.Label())
		}
		fixed[fa.Task] = fa.Resource
	}

	for _, b := range p.Blackouts {
		if b.Resource < 0 || b.Resource >= numWorkers {
			return invalidf("blackout names unknown resource index %d", b.Resource)
		}
		if b.From < 0 || b.To < b.From {
			return invalidf("blackout for %s has invalid range [%d, %d)", p.Resources[b.Resource].Label(), b.From, b.To)
		}
	}

	for _, win := range p.Windows {
		if win.Task < 0 || win.Task >= numTasks {
			return invalidf("task window names unknown task index %d", win.Task)
		}
		label := p.Tasks[win.Task].Label()
		if win.NotBefore != nil && *win.NotBefore < 0 {
			return invalidf("task window for %s starts before day 0", label)
		}
		if win.NotAfter != nil && *win.NotAfter < 0 {
			return invalidf("task window for %s ends before day 0", label)
		}
		if win.NotBefore != nil && win.NotAfter != nil && *win.NotAfter < *win.NotBefore {
			return invalidf("task window for %s ends (%d) before it starts (%d)", label, *win.NotAfter, *win.NotBefore)
		}
	}

	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
