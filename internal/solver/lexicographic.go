package solver

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/valter-silva-au/staffplan/internal/scheduling"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

type achieved struct {
	objective models.Objective
	value     int64
}

// SolveLexicographic minimizes the objectives in priority order. Each phase
// rebuilds the model, fixes every earlier objective at the value its phase
// achieved, seeds the engine with the previous phase's assignment and
// minimizes the next objective. The run stops at the first phase that finds
// no solution and returns that phase's status.
func (d *Driver) SolveLexicographic(p models.Problem, priorities []models.Objective) (*models.Solution, error) {
	if err := validatePriorities(priorities); err != nil {
		return nil, err
	}
	if err := scheduling.Validate(p); err != nil {
		return nil, err
	}

	var (
		fixed  []achieved
		hints  *models.Hints
		phases []models.PhaseResult
		sol    *models.Solution
	)
	for i, o := range priorities {
		prior := append([]achieved(nil), fixed...)

		d.logEvent("phase.started", map[string]any{"mode": "lexicographic", "phase": i, "objective": string(o)})
		var err error
		sol, err = d.run(p, phase{
			index:     i,
			objective: o,
			hints:     hints,
			prepare: func(m *scheduling.Model) (cpmodel.LinearArgument, error) {
				for _, a := range prior {
					if err := m.RequireValue(a.objective, a.value); err != nil {
						return nil, err
					}
				}
				return m.ObjectiveExpr(o)
			},
		})
		if err != nil {
			return nil, fmt.Errorf("lexicographic phase %d (%s): %w", i, o, err)
		}
		phases = append(phases, phaseResult(i, o, sol))
		d.logEvent("phase.finished", map[string]any{
			"mode":      "lexicographic",
			"phase":     i,
			"objective": string(o),
			"status":    string(sol.Status),
			"value":     sol.ObjectiveValue,
		})

		if !sol.Found() {
			break
		}
		fixed = append(fixed, achieved{objective: o, value: sol.ObjectiveValue})
		hints = sol.Hints
	}

	sol.Phases = phases
	return sol, nil
}

func validatePriorities(priorities []models.Objective) error {
	if len(priorities) == 0 {
		return fmt.Errorf("%w: no objectives given", ErrInvalidConfiguration)
	}
	seen := make(map[models.Objective]bool, len(priorities))
	for _, o := range priorities {
		if !o.Valid() {
			return fmt.Errorf("%w: unknown objective %q", ErrInvalidConfiguration, o)
		}
		if seen[o] {
			return fmt.Errorf("%w: objective %q listed twice", ErrInvalidConfiguration, o)
		}
		seen[o] = true
	}
	return nil
}
