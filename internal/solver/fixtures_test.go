package solver

import (
	"testing"
	"time"

	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// sampleProblem is the requirements/API/DB/unit-test/QA project staffed by
// one analyst, one developer and one tester.
func sampleProblem() models.Problem {
	return models.Problem{
		Resources: []models.Resource{
			{ID: "A1", CostPerHour: 50, Skills: []string{"analysis"}},
			{ID: "Dev", CostPerHour: 60, Skills: []string{"dev"}},
			{ID: "QA1", CostPerHour: 40, Skills: []string{"qa"}},
		},
		Tasks: []models.Task{
			{ID: "Req", EffortHours: 6, Skill: "analysis"},
			{ID: "API", EffortHours: 24, Skill: "dev", DependsOn: []int{0}},
			{ID: "DB", EffortHours: 8, Skill: "dev", DependsOn: []int{0}},
			{ID: "UT", EffortHours: 8, Skill: "dev", DependsOn: []int{1, 2}},
			{ID: "QA", EffortHours: 5, Skill: "qa", DependsOn: []int{3}},
		},
	}
}

// tradeoffProblem adds a cheaper second developer, so finishing early costs
// more than finishing late.
func tradeoffProblem() models.Problem {
	p := sampleProblem()
	p.Resources = append(p.Resources[:2:2],
		models.Resource{ID: "Cheap", CostPerHour: 30, Skills: []string{"dev"}},
		p.Resources[2],
	)
	return p
}

// deadlineProblem is a design-then-build project with three parallel dev
// streams. The developer alone needs nine days for the streams; SA also
// codes, at a higher rate.
func deadlineProblem() models.Problem {
	return models.Problem{
		Resources: []models.Resource{
			{ID: "Analyst 1", CostPerHour: 50, Skills: []string{"analysis"}},
			{ID: "Analyst 2", CostPerHour: 55, Skills: []string{"analysis"}},
			{ID: "Dev", CostPerHour: 60, Skills: []string{"dev"}},
			{ID: "SA", CostPerHour: 80, Skills: []string{"analysis", "dev"}},
			{ID: "QA1", CostPerHour: 40, Skills: []string{"qa"}},
			{ID: "QA2", CostPerHour: 40, Skills: []string{"qa"}},
		},
		Tasks: []models.Task{
			{ID: "Req", EffortHours: 6, Skill: "analysis"},
			{ID: "API design", EffortHours: 8, Skill: "dev", DependsOn: []int{0}},
			{ID: "DB design", EffortHours: 8, Skill: "dev", DependsOn: []int{0}},
			{ID: "API", EffortHours: 24, Skill: "dev", DependsOn: []int{1, 2}},
			{ID: "Dev 1", EffortHours: 24, Skill: "dev", DependsOn: []int{1}},
			{ID: "Dev 2", EffortHours: 24, Skill: "dev", DependsOn: []int{1}},
			{ID: "Dev 3", EffortHours: 24, Skill: "dev", DependsOn: []int{1}},
			{ID: "UT", EffortHours: 8, Skill: "dev", DependsOn: []int{3}},
			{ID: "API test", EffortHours: 5, Skill: "qa", DependsOn: []int{3}},
		},
	}
}

func testParams() Params {
	return Params{MaxTime: 30 * time.Second, NumSearchWorkers: 1}
}

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	return NewDriver(NewCPSATEngine(), testParams(), nil)
}

// fakeEngine replays canned statuses. Solutions are all-zero vectors sized to
// the model.
type fakeEngine struct {
	statuses   []cmpb.CpSolverStatus
	objectives []float64
	err        error

	calls []EngineParams
}

func (f *fakeEngine) Solve(model *cmpb.CpModelProto, params EngineParams) (*cmpb.CpSolverResponse, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	i := len(f.calls) - 1
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	resp := &cmpb.CpSolverResponse{Status: f.statuses[i]}
	if resp.Status == cmpb.CpSolverStatus_OPTIMAL || resp.Status == cmpb.CpSolverStatus_FEASIBLE {
		resp.Solution = make([]int64, len(model.GetVariables()))
		if i < len(f.objectives) {
			resp.ObjectiveValue = f.objectives[i]
		}
	}
	return resp, nil
}

type recordingEvents struct {
	types []string
}

func (r *recordingEvents) LogEvent(eventType string, _ map[string]any) error {
	r.types = append(r.types, eventType)
	return nil
}

func taskByID(t *testing.T, p models.Problem, sol *models.Solution, id string) models.TaskAssignment {
	t.Helper()
	for i, task := range p.Tasks {
		if task.ID == id {
			return sol.Tasks[i]
		}
	}
	t.Fatalf("no task %q", id)
	return models.TaskAssignment{}
}
