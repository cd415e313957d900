package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/internal/solver"
	"github.com/valter-silva-au/staffplan/internal/storage"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// testPlanYAML groups API and UT under a Build summary task; one developer
// does API on days 0-1 and UT on day 2.
const testPlanYAML = `version: "1.0"
name: demo
start_date: "2026-01-05"
resources:
  - id: Dev
    cost_per_hour: 60
    skills: [dev]
tasks:
  - id: Build
    summary: true
  - id: API
    parent: Build
    effort_hours: 16
    skill: dev
  - id: UT
    parent: Build
    effort_hours: 4
    skill: dev
    depends_on: [API]
`

type fakePlanner struct {
	solution     *models.Solution
	err          error
	verifyStatus models.SolveStatus
	requests     []core.SolveRequest
}

func (f *fakePlanner) Solve(req core.SolveRequest) (*core.SolveResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	mode, err := core.ModeFor(req)
	if err != nil {
		return nil, err
	}
	return &core.SolveResult{RunID: "run-1", Mode: mode, Digest: req.Digest, Solution: f.solution}, nil
}

func (f *fakePlanner) Verify(_ models.Problem, stored *models.Solution) (*models.Solution, error) {
	if f.verifyStatus != "" && !f.verifyStatus.HasSolution() {
		return &models.Solution{Status: f.verifyStatus}, nil
	}
	checked := *stored
	checked.Status = models.StatusOptimal
	return &checked, nil
}

func (f *fakePlanner) Estimate(tasks []models.Task) core.Estimate {
	return core.NewPlanner(nil, solver.DefaultParams(), nil).Estimate(tasks)
}

func testSolution() *models.Solution {
	return &models.Solution{
		Status:         models.StatusOptimal,
		Objective:      models.ObjectiveCost,
		ObjectiveValue: 1200,
		Tasks: []models.TaskAssignment{
			{Task: 0, Start: 0, End: 2, Worker: 0},
			{Task: 1, Start: 2, End: 3, Worker: 0},
		},
		Workers:   [][]models.WorkerDay{{{Day: 0, Task: 0}, {Day: 1, Task: 0}, {Day: 2, Task: 1}}},
		Duration:  3,
		Cost:      1200,
		Resources: 1,
	}
}

// writeTestPlan writes testPlanYAML to a temp file and returns its path.
func writeTestPlan(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(testPlanYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testSchedule(t *testing.T) *storage.ScheduleFile {
	t.Helper()
	plan, err := storage.ParsePlan([]byte(testPlanYAML))
	if err != nil {
		t.Fatalf("parsing plan: %v", err)
	}
	s, err := storage.BuildSchedule(plan, testSolution(), storage.RunInfo{RunID: "run-1", Mode: "single", Objectives: []string{"cost"}})
	if err != nil {
		t.Fatalf("building schedule: %v", err)
	}
	return s
}

// withPlanner swaps the package planner for the duration of a test.
func withPlanner(t *testing.T, p core.Planner) {
	t.Helper()
	orig := Planner
	Planner = p
	t.Cleanup(func() { Planner = orig })
}
