package solver

import (
	"errors"
	"math"
	"testing"

	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

func TestSolveLexicographic_PriorityOrderMatters(t *testing.T) {
	p := tradeoffProblem()
	d := newTestDriver(t)

	tests := []struct {
		name         string
		priorities   []models.Objective
		wantCost     int64
		wantDuration int64
	}{
		{"cost then duration", []models.Objective{models.ObjectiveCost, models.ObjectiveDuration}, 1700, 7},
		{"duration then cost", []models.Objective{models.ObjectiveDuration, models.ObjectiveCost}, 1940, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol, err := d.SolveLexicographic(p, tt.priorities)
			if err != nil {
				t.Fatalf("SolveLexicographic() error = %v", err)
			}
			if !sol.Found() {
				t.Fatalf("status = %s, want a solution", sol.Status)
			}
			if sol.Cost != tt.wantCost {
				t.Errorf("Cost = %d, want %d", sol.Cost, tt.wantCost)
			}
			if sol.Duration != tt.wantDuration {
				t.Errorf("Duration = %d, want %d", sol.Duration, tt.wantDuration)
			}
			if len(sol.Phases) != len(tt.priorities) {
				t.Fatalf("Phases = %d, want %d", len(sol.Phases), len(tt.priorities))
			}
			for i, ph := range sol.Phases {
				if ph.Objective != tt.priorities[i] || ph.Index != i {
					t.Errorf("phase %d = %+v, want objective %s", i, ph, tt.priorities[i])
				}
			}
		})
	}
}

func TestSolveLexicographic_EarlierObjectiveNeverSacrificed(t *testing.T) {
	p := tradeoffProblem()
	d := newTestDriver(t)

	alone, err := d.Solve(p, models.ObjectiveCost)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	lex, err := d.SolveLexicographic(p, []models.Objective{models.ObjectiveCost, models.ObjectiveResources, models.ObjectiveDuration})
	if err != nil {
		t.Fatalf("SolveLexicographic() error = %v", err)
	}
	if lex.Cost != alone.Cost {
		t.Errorf("lexicographic cost = %d, want standalone optimum %d", lex.Cost, alone.Cost)
	}
	if lex.Phases[1].Value != int64(lex.Resources) {
		t.Errorf("resources phase value %d, final realized %d", lex.Phases[1].Value, lex.Resources)
	}
}

func TestSolveLexicographic_StopsAtInfeasiblePhase(t *testing.T) {
	engine := &fakeEngine{statuses: []cmpb.CpSolverStatus{cmpb.CpSolverStatus_INFEASIBLE}}
	d := NewDriver(engine, testParams(), nil)

	sol, err := d.SolveLexicographic(sampleProblem(), []models.Objective{models.ObjectiveCost, models.ObjectiveDuration})
	if err != nil {
		t.Fatalf("SolveLexicographic() error = %v", err)
	}
	if sol.Found() {
		t.Errorf("status = %s, want no solution", sol.Status)
	}
	if len(engine.calls) != 1 || len(sol.Phases) != 1 {
		t.Errorf("ran %d solves and %d phases, want 1 and 1", len(engine.calls), len(sol.Phases))
	}
}

func TestSolveLexicographic_InvalidConfiguration(t *testing.T) {
	d := NewDriver(&fakeEngine{statuses: []cmpb.CpSolverStatus{cmpb.CpSolverStatus_OPTIMAL}}, testParams(), nil)

	tests := []struct {
		name       string
		priorities []models.Objective
	}{
		{"empty", nil},
		{"unknown", []models.Objective{"speed"}},
		{"duplicate", []models.Objective{models.ObjectiveCost, models.ObjectiveCost}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.SolveLexicographic(sampleProblem(), tt.priorities)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestSolveLexicographic_EmitsPhaseEvents(t *testing.T) {
	events := &recordingEvents{}
	d := NewDriver(&fakeEngine{statuses: []cmpb.CpSolverStatus{cmpb.CpSolverStatus_OPTIMAL}}, testParams(), events)
	if _, err := d.SolveLexicographic(sampleProblem(), []models.Objective{models.ObjectiveCost, models.ObjectiveDuration}); err != nil {
		t.Fatalf("SolveLexicographic() error = %v", err)
	}
	want := []string{
		"phase.started", "solve.started", "solve.finished", "phase.finished",
		"phase.started", "solve.started", "solve.finished", "phase.finished",
	}
	if len(events.types) != len(want) {
		t.Fatalf("events = %v, want %v", events.types, want)
	}
	for i := range want {
		if events.types[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, events.types[i], want[i])
		}
	}
}

func TestSolveWeighted_BalancesWithinObservedRange(t *testing.T) {
	p := tradeoffProblem()
	d := newTestDriver(t)

	sol, err := d.SolveWeighted(p, map[models.Objective]float64{
		models.ObjectiveCost:     0.5,
		models.ObjectiveDuration: 0.5,
	})
	if err != nil {
		t.Fatalf("SolveWeighted() error = %v", err)
	}
	if !sol.Found() {
		t.Fatalf("status = %s, want a solution", sol.Status)
	}
	if sol.Objective != models.ObjectiveWeighted {
		t.Errorf("Objective = %s, want weighted", sol.Objective)
	}
	if sol.Cost < 1700 || sol.Cost > 1940 {
		t.Errorf("Cost = %d, want within [1700, 1940]", sol.Cost)
	}
	if sol.Duration < 6 || sol.Duration > 7 {
		t.Errorf("Duration = %d, want within [6, 7]", sol.Duration)
	}
	if len(sol.Phases) != 3 {
		t.Fatalf("Phases = %d, want 2 standalone solves and the weighted one", len(sol.Phases))
	}
	if sol.Phases[0].Objective != models.ObjectiveCost || sol.Phases[1].Objective != models.ObjectiveDuration {
		t.Errorf("standalone phases = %s, %s, want cost then duration", sol.Phases[0].Objective, sol.Phases[1].Objective)
	}
}

func TestSolveWeighted_DominantWeightWins(t *testing.T) {
	p := tradeoffProblem()
	d := newTestDriver(t)

	sol, err := d.SolveWeighted(p, map[models.Objective]float64{
		models.ObjectiveCost:     1,
		models.ObjectiveDuration: 0,
	})
	if err != nil {
		t.Fatalf("SolveWeighted() error = %v", err)
	}
	if sol.Cost != 1700 {
		t.Errorf("Cost = %d, want cost optimum 1700", sol.Cost)
	}
}

func TestSolveWeighted_InvalidConfiguration(t *testing.T) {
	d := NewDriver(&fakeEngine{statuses: []cmpb.CpSolverStatus{cmpb.CpSolverStatus_OPTIMAL}}, testParams(), nil)

	tests := []struct {
		name    string
		weights map[models.Objective]float64
	}{
		{"empty", nil},
		{"all zero", map[models.Objective]float64{models.ObjectiveCost: 0, models.ObjectiveDuration: 0}},
		{"negative", map[models.Objective]float64{models.ObjectiveCost: 1, models.ObjectiveDuration: -0.5}},
		{"nan", map[models.Objective]float64{models.ObjectiveCost: math.NaN()}},
		{"unknown", map[models.Objective]float64{"speed": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.SolveWeighted(sampleProblem(), tt.weights)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestSolveWeighted_NoSolutionInFirstPhase(t *testing.T) {
	p := sampleProblem()
	p.Resources = p.Resources[:2]

	sol, err := newTestDriver(t).SolveWeighted(p, map[models.Objective]float64{models.ObjectiveCost: 1})
	if err != nil {
		t.Fatalf("SolveWeighted() error = %v", err)
	}
	if sol.Found() {
		t.Errorf("status = %s, want no solution", sol.Status)
	}
}

func TestWeightCoefficient(t *testing.T) {
	tests := []struct {
		weight float64
		spread int64
		want   int64
	}{
		{0.5, 240, 2083},
		{1, 1, 1_000_000},
		{0.8, 0, 0},
		{0, 100, 0},
		{1e-9, 1_000_000, 1},
	}
	for _, tt := range tests {
		if got := WeightCoefficient(tt.weight, tt.spread); got != tt.want {
			t.Errorf("WeightCoefficient(%v, %d) = %d, want %d", tt.weight, tt.spread, got, tt.want)
		}
	}
}
