package solver

import (
	"fmt"
	"math"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/valter-silva-au/staffplan/internal/scheduling"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// weightScale turns fractional weights into integer coefficients.
const weightScale = 1_000_000

// SolveWeighted minimizes a weighted sum of normalized deviations.
//
// Phase one minimizes each weighted objective on its own, in canonical order,
// recording the achieved target and the worst value every objective took
// across those solves. Phase two bounds each objective within a deviation
// variable of its target and minimizes the sum of deviation * w / (max -
// target). Objectives whose target equals their worst value contribute a
// zero-width deviation and no term.
func (d *Driver) SolveWeighted(p models.Problem, weights map[models.Objective]float64) (*models.Solution, error) {
	if err := validateWeights(weights); err != nil {
		return nil, err
	}
	if err := scheduling.Validate(p); err != nil {
		return nil, err
	}

	objectives := models.ObjectivesOf(weights)
	targets := make(map[models.Objective]int64, len(objectives))
	worst := make(map[models.Objective]int64, len(models.AllObjectives))

	var (
		hints  *models.Hints
		phases []models.PhaseResult
	)
	for i, o := range objectives {
		d.logEvent("phase.started", map[string]any{"mode": "weighted", "phase": i, "objective": string(o)})
		sol, err := d.run(p, phase{
			index:     i,
			objective: o,
			hints:     hints,
			prepare: func(m *scheduling.Model) (cpmodel.LinearArgument, error) {
				return m.ObjectiveExpr(o)
			},
		})
		if err != nil {
			return nil, fmt.Errorf("weighted phase %d (%s): %w", i, o, err)
		}
		phases = append(phases, phaseResult(i, o, sol))
		d.logEvent("phase.finished", map[string]any{
			"mode":      "weighted",
			"phase":     i,
			"objective": string(o),
			"status":    string(sol.Status),
			"value":     sol.ObjectiveValue,
		})
		if !sol.Found() {
			sol.Phases = phases
			return sol, nil
		}

		targets[o] = sol.ObjectiveValue
		for _, k := range models.AllObjectives {
			if v := sol.Value(k); v > worst[k] {
				worst[k] = v
			}
		}
		hints = sol.Hints
	}

	final := len(objectives)
	d.logEvent("phase.started", map[string]any{"mode": "weighted", "phase": final, "objective": string(models.ObjectiveWeighted)})
	sol, err := d.run(p, phase{
		index:     final,
		objective: models.ObjectiveWeighted,
		hints:     hints,
		prepare: func(m *scheduling.Model) (cpmodel.LinearArgument, error) {
			expr := cpmodel.NewLinearExpr()
			for _, o := range objectives {
				spread := worst[o] - targets[o]
				delta, err := m.Deviation(o, targets[o], spread)
				if err != nil {
					return nil, err
				}
				if c := WeightCoefficient(weights[o], spread); c > 0 {
					expr.AddTerm(delta, c)
				}
			}
			return expr, nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("weighted phase %d: %w", final, err)
	}
	phases = append(phases, phaseResult(final, models.ObjectiveWeighted, sol))
	d.logEvent("phase.finished", map[string]any{
		"mode":      "weighted",
		"phase":     final,
		"objective": string(models.ObjectiveWeighted),
		"status":    string(sol.Status),
		"value":     sol.ObjectiveValue,
	})

	sol.Phases = phases
	return sol, nil
}

// WeightCoefficient returns the integer coefficient of one deviation term:
// round(w * scale / spread), at least 1 for a positive weight, and 0 when
// the weight or the spread is zero.
func WeightCoefficient(weight float64, spread int64) int64 {
	if weight <= 0 || spread <= 0 {
		return 0
	}
	c := int64(math.Round(weight * weightScale / float64(spread)))
	if c < 1 {
		c = 1
	}
	return c
}

func validateWeights(weights map[models.Objective]float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: no weights given", ErrInvalidConfiguration)
	}
	positive := false
	for o, w := range weights {
		if !o.Valid() {
			return fmt.Errorf("%w: unknown objective %q", ErrInvalidConfiguration, o)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight of %s must be a non-negative number, got %v", ErrInvalidConfiguration, o, w)
		}
		if w > 0 {
			positive = true
		}
	}
	if !positive {
		return fmt.Errorf("%w: at least one weight must be positive", ErrInvalidConfiguration)
	}
	return nil
}
