package solver

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/valter-silva-au/staffplan/internal/calendar"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

var propertySkills = []string{"", "dev", "qa"}

// drawProblem draws a small problem whose dependencies only point at earlier
// tasks, so the precedence graph is acyclic.
func drawProblem(rt *rapid.T) models.Problem {
	numWorkers := rapid.IntRange(1, 3).Draw(rt, "numWorkers")
	numTasks := rapid.IntRange(1, 4).Draw(rt, "numTasks")

	p := models.Problem{}
	for w := 0; w < numWorkers; w++ {
		skills := rapid.SliceOfDistinct(rapid.SampledFrom(propertySkills[1:]), rapid.ID[string]).
			Draw(rt, fmt.Sprintf("skills_%d", w))
		p.Resources = append(p.Resources, models.Resource{
			ID:          fmt.Sprintf("W%d", w),
			CostPerHour: int64(rapid.IntRange(0, 100).Draw(rt, fmt.Sprintf("rate_%d", w))),
			Skills:      skills,
		})
	}
	for t := 0; t < numTasks; t++ {
		var deps []int
		for pred := 0; pred < t; pred++ {
			if rapid.Bool().Draw(rt, fmt.Sprintf("dep_%d_%d", t, pred)) {
				deps = append(deps, pred)
			}
		}
		p.Tasks = append(p.Tasks, models.Task{
			ID:          fmt.Sprintf("T%d", t),
			EffortHours: int64(rapid.IntRange(0, 20).Draw(rt, fmt.Sprintf("effort_%d", t))),
			Skill:       rapid.SampledFrom(propertySkills).Draw(rt, fmt.Sprintf("skill_%d", t)),
			DependsOn:   deps,
		})
	}
	return p
}

// checkSchedule asserts the structural invariants of a found solution.
func checkSchedule(rt *rapid.T, p models.Problem, sol *models.Solution) {
	for t, ta := range sol.Tasks {
		task := p.Tasks[t]
		if ta.Worker < 0 {
			rt.Fatalf("task %d has no assignee", t)
		}
		if !p.Resources[ta.Worker].CanPerform(task) {
			rt.Fatalf("task %d needs %q, assigned to %s with %v", t, task.Skill, p.Resources[ta.Worker].ID, p.Resources[ta.Worker].Skills)
		}
		if ta.End-ta.Start != calendar.TaskDays(task) {
			rt.Fatalf("task %d spans %d days, want %d", t, ta.End-ta.Start, calendar.TaskDays(task))
		}
		for _, dep := range task.DependsOn {
			if ta.Start < sol.Tasks[dep].End {
				rt.Fatalf("task %d starts %d before predecessor %d ends %d", t, ta.Start, dep, sol.Tasks[dep].End)
			}
		}
	}

	worked := make([]int64, len(p.Tasks))
	for w, days := range sol.Workers {
		seen := make(map[int64]bool, len(days))
		for _, wd := range days {
			if seen[wd.Day] {
				rt.Fatalf("worker %d has two tasks on day %d", w, wd.Day)
			}
			seen[wd.Day] = true
			if sol.Tasks[wd.Task].Worker != w {
				rt.Fatalf("worker %d works on task %d assigned to %d", w, wd.Task, sol.Tasks[wd.Task].Worker)
			}
			worked[wd.Task]++
		}
	}
	for t := range p.Tasks {
		if worked[t] != calendar.TaskDays(p.Tasks[t]) {
			rt.Fatalf("task %d worked %d days, want %d", t, worked[t], calendar.TaskDays(p.Tasks[t]))
		}
	}
}

// =============================================================================
// Property 1: Solved Schedules Respect Every Structural Constraint
// =============================================================================

// Feature: solver, Property 1: Solved Schedules Respect Every Structural Constraint
// *For any* small acyclic problem, a found solution SHALL give every task a
// skilled assignee, keep precedence, never double-book a worker on a day,
// and cover exactly the task's duration in worker days.
func TestProperty1_SolvedSchedulesRespectConstraints(t *testing.T) {
	d := newTestDriver(t)
	rapid.Check(t, func(rt *rapid.T) {
		p := drawProblem(rt)
		o := rapid.SampledFrom(models.AllObjectives).Draw(rt, "objective")

		sol, err := d.Solve(p, o)
		if err != nil {
			rt.Fatalf("Solve() error = %v", err)
		}
		if !sol.Found() {
			return
		}
		checkSchedule(rt, p, sol)
	})
}

// =============================================================================
// Property 2: Missing Skill Means No Solution
// =============================================================================

// Feature: solver, Property 2: Missing Skill Means No Solution
// *For any* problem containing a task whose skill no worker holds, every
// objective SHALL report no solution.
func TestProperty2_MissingSkillMeansNoSolution(t *testing.T) {
	d := newTestDriver(t)
	rapid.Check(t, func(rt *rapid.T) {
		p := drawProblem(rt)
		p.Tasks = append(p.Tasks, models.Task{ID: "orphan", EffortHours: 4, Skill: "legal"})

		sol, err := d.Solve(p, rapid.SampledFrom(models.AllObjectives).Draw(rt, "objective"))
		if err != nil {
			rt.Fatalf("Solve() error = %v", err)
		}
		if sol.Found() {
			rt.Fatalf("status = %s, want no solution", sol.Status)
		}
	})
}

// =============================================================================
// Property 3: Lexicographic Order Preserves Earlier Optima
// =============================================================================

// Feature: solver, Property 3: Lexicographic Order Preserves Earlier Optima
// *For any* problem and objective order, the first objective's realized value
// SHALL equal its standalone optimum.
func TestProperty3_LexicographicPreservesFirstOptimum(t *testing.T) {
	d := newTestDriver(t)
	rapid.Check(t, func(rt *rapid.T) {
		p := drawProblem(rt)
		order := rapid.Permutation(models.AllObjectives).Draw(rt, "order")

		alone, err := d.Solve(p, order[0])
		if err != nil {
			rt.Fatalf("Solve() error = %v", err)
		}
		lex, err := d.SolveLexicographic(p, order)
		if err != nil {
			rt.Fatalf("SolveLexicographic() error = %v", err)
		}
		if alone.Found() != lex.Found() {
			rt.Fatalf("standalone found=%v, lexicographic found=%v", alone.Found(), lex.Found())
		}
		if !lex.Found() {
			return
		}
		checkSchedule(rt, p, lex)
		if got, want := lex.Value(order[0]), alone.Value(order[0]); got != want {
			rt.Fatalf("%s = %d under lexicographic order, standalone optimum %d", order[0], got, want)
		}
		for i, ph := range lex.Phases[:len(lex.Phases)-1] {
			if got := lex.Value(ph.Objective); got > ph.Value {
				rt.Fatalf("phase %d %s achieved %d, final solution realizes %d", i, ph.Objective, ph.Value, got)
			}
		}
	})
}

// =============================================================================
// Property 4: Weighted Result Lies Within Observed Range
// =============================================================================

// Feature: solver, Property 4: Weighted Result Lies Within Observed Range
// *For any* problem and weights with at least one positive entry, every
// weighted objective's realized value SHALL lie within [target, max observed]
// from the standalone phases.
func TestProperty4_WeightedWithinObservedRange(t *testing.T) {
	d := newTestDriver(t)
	rapid.Check(t, func(rt *rapid.T) {
		p := drawProblem(rt)
		weights := map[models.Objective]float64{}
		for _, o := range models.AllObjectives {
			if rapid.Bool().Draw(rt, "use_"+string(o)) {
				weights[o] = rapid.Float64Range(0, 1).Draw(rt, "weight_"+string(o))
			}
		}
		if len(weights) == 0 {
			weights[models.ObjectiveCost] = 1
		}
		positive := false
		for _, w := range weights {
			positive = positive || w > 0
		}
		if !positive {
			weights[models.ObjectivesOf(weights)[0]] = 1
		}

		sol, err := d.SolveWeighted(p, weights)
		if err != nil {
			rt.Fatalf("SolveWeighted() error = %v", err)
		}
		if !sol.Found() {
			return
		}
		checkSchedule(rt, p, sol)

		objectives := models.ObjectivesOf(weights)
		standalone := sol.Phases[:len(objectives)]
		for i, o := range objectives {
			target := standalone[i].Value
			var worst int64
			for _, ph := range standalone {
				worst = max(worst, ph.Realized(o))
			}
			if got := sol.Value(o); got < target || got > worst {
				rt.Fatalf("%s = %d, want within [%d, %d]", o, got, target, worst)
			}
		}
	})
}
