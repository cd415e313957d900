package scheduling

import "github.com/valter-silva-au/staffplan/pkg/models"

// sampleProblem is the requirements/API/DB/unit-test/QA plan used across tests.
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

func day(d int64) *int64 { return &d }
