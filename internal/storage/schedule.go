package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/staffplan/internal/calendar"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// RunInfo identifies the run that produced a schedule.
type RunInfo struct {
	RunID      string
	Mode       string
	Objectives []string
}

// ScheduledTask is one task row of a schedule file. Summary rows span the
// earliest start and latest finish of the tasks beneath them.
type ScheduledTask struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	Summary   bool   `yaml:"summary,omitempty" json:"summary,omitempty"`
	Parent    string `yaml:"parent,omitempty" json:"parent,omitempty"`
	StartDay  int64  `yaml:"start_day" json:"start_day"`
	FinishDay int64  `yaml:"finish_day" json:"finish_day"`
	Start     string `yaml:"start" json:"start"`
	Finish    string `yaml:"finish" json:"finish"`
	Resource  string `yaml:"resource,omitempty" json:"resource,omitempty"`
}

// WorkDay is one day of a resource's work.
type WorkDay struct {
	Day  int64  `yaml:"day" json:"day"`
	Date string `yaml:"date" json:"date"`
	Task string `yaml:"task" json:"task"`
}

// ResourceSchedule lists the days a resource works, in ascending order.
type ResourceSchedule struct {
	Resource string    `yaml:"resource" json:"resource"`
	Days     []WorkDay `yaml:"days" json:"days"`
}

// Totals are the realized objective values of a schedule.
type Totals struct {
	Duration  int64 `yaml:"duration" json:"duration"`
	Cost      int64 `yaml:"cost" json:"cost"`
	Resources int   `yaml:"resources" json:"resources"`
}

// ScheduleFile is the top-level structure of an exported schedule.
type ScheduleFile struct {
	Version        string               `yaml:"version" json:"version"`
	Plan           string               `yaml:"plan,omitempty" json:"plan,omitempty"`
	PlanDigest     string               `yaml:"plan_digest" json:"plan_digest"`
	RunID          string               `yaml:"run_id,omitempty" json:"run_id,omitempty"`
	Mode           string               `yaml:"mode,omitempty" json:"mode,omitempty"`
	Objectives     []string             `yaml:"objectives,omitempty" json:"objectives,omitempty"`
	Status         models.SolveStatus   `yaml:"status" json:"status"`
	Objective      models.Objective     `yaml:"objective,omitempty" json:"objective,omitempty"`
	ObjectiveValue int64                `yaml:"objective_value" json:"objective_value"`
	StartDate      string               `yaml:"start_date" json:"start_date"`
	Totals         Totals               `yaml:"totals" json:"totals"`
	Tasks          []ScheduledTask      `yaml:"tasks" json:"tasks"`
	Resources      []ResourceSchedule   `yaml:"resources" json:"resources"`
	Phases         []models.PhaseResult `yaml:"phases,omitempty" json:"phases,omitempty"`
}

// BuildSchedule maps a found solution back onto the plan's IDs and dates.
func BuildSchedule(plan *Plan, sol *models.Solution, run RunInfo) (*ScheduleFile, error) {
	if !sol.Found() {
		return nil, fmt.Errorf("building schedule: solve ended %s without a solution", sol.Status)
	}
	if len(sol.Tasks) != len(plan.LeafIDs) {
		return nil, fmt.Errorf("building schedule: solution has %d tasks, plan has %d", len(sol.Tasks), len(plan.LeafIDs))
	}

	s := &ScheduleFile{
		Version:        "1.0",
		Plan:           plan.File.Name,
		PlanDigest:     plan.Digest,
		RunID:          run.RunID,
		Mode:           run.Mode,
		Objectives:     run.Objectives,
		Status:         sol.Status,
		Objective:      sol.Objective,
		ObjectiveValue: sol.ObjectiveValue,
		StartDate:      plan.Start.Format(DateFormat),
		Totals:         Totals{Duration: sol.Duration, Cost: sol.Cost, Resources: sol.Resources},
		Phases:         sol.Phases,
	}

	for _, entry := range plan.File.Tasks {
		row := ScheduledTask{ID: entry.ID, Name: entry.Name, Summary: entry.Summary, Parent: entry.Parent}
		if entry.Summary {
			leaves := plan.Leaves[entry.ID]
			if len(leaves) == 0 {
				continue
			}
			row.StartDay, row.FinishDay = sol.Tasks[leaves[0]].Start, sol.Tasks[leaves[0]].End
			for _, l := range leaves[1:] {
				row.StartDay = min(row.StartDay, sol.Tasks[l].Start)
				row.FinishDay = max(row.FinishDay, sol.Tasks[l].End)
			}
		} else {
			ta := sol.Tasks[plan.TaskIndex[entry.ID]]
			row.StartDay, row.FinishDay = ta.Start, ta.End
			if ta.Worker >= 0 {
				row.Resource = plan.Problem.Resources[ta.Worker].ID
			}
		}
		row.Start = calendar.DayToDate(plan.Start, row.StartDay).Format(DateFormat)
		row.Finish = calendar.DayToDate(plan.Start, row.FinishDay).Format(DateFormat)
		s.Tasks = append(s.Tasks, row)
	}

	for w, r := range plan.Problem.Resources {
		rs := ResourceSchedule{Resource: r.ID, Days: []WorkDay{}}
		if w < len(sol.Workers) {
			for _, wd := range sol.Workers[w] {
				rs.Days = append(rs.Days, WorkDay{
					Day:  wd.Day,
					Date: calendar.DayToDate(plan.Start, wd.Day).Format(DateFormat),
					Task: plan.LeafIDs[wd.Task],
				})
			}
		}
		s.Resources = append(s.Resources, rs)
	}

	return s, nil
}

// Solution rebuilds the index-based solution of a schedule against plan. It
// fails when the schedule names tasks or resources the plan does not have, or
// days outside the plan's horizon.
func (s *ScheduleFile) Solution(plan *Plan) (*models.Solution, error) {
	horizon := calendar.ProblemHorizon(plan.Problem)
	for _, row := range s.Tasks {
		if err := checkSpan(row, horizon); err != nil {
			return nil, fmt.Errorf("schedule task %q: %w", row.ID, err)
		}
	}
	for _, rs := range s.Resources {
		for _, wd := range rs.Days {
			if wd.Day < 0 || wd.Day >= horizon {
				return nil, fmt.Errorf("schedule has %q working on day %d, outside [0, %d)", rs.Resource, wd.Day, horizon)
			}
		}
	}

	sol := &models.Solution{
		Status:         s.Status,
		Objective:      s.Objective,
		ObjectiveValue: s.ObjectiveValue,
		Duration:       s.Totals.Duration,
		Cost:           s.Totals.Cost,
		Resources:      s.Totals.Resources,
		Tasks:          make([]models.TaskAssignment, len(plan.LeafIDs)),
		Workers:        make([][]models.WorkerDay, len(plan.Problem.Resources)),
		Phases:         s.Phases,
	}

	seen := make([]bool, len(plan.LeafIDs))
	for _, row := range s.Tasks {
		if row.Summary {
			continue
		}
		t, ok := plan.TaskIndex[row.ID]
		if !ok {
			return nil, fmt.Errorf("schedule names unknown task %q", row.ID)
		}
		worker := -1
		if row.Resource != "" {
			w, ok := plan.ResourceIndex[row.Resource]
			if !ok {
				return nil, fmt.Errorf("schedule assigns task %q to unknown resource %q", row.ID, row.Resource)
			}
			worker = w
		}
		sol.Tasks[t] = models.TaskAssignment{Task: t, Start: row.StartDay, End: row.FinishDay, Worker: worker}
		seen[t] = true
	}
	for t, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("schedule is missing task %q", plan.LeafIDs[t])
		}
	}

	for i := range sol.Workers {
		sol.Workers[i] = []models.WorkerDay{}
	}
	for _, rs := range s.Resources {
		w, ok := plan.ResourceIndex[rs.Resource]
		if !ok {
			return nil, fmt.Errorf("schedule names unknown resource %q", rs.Resource)
		}
		for _, wd := range rs.Days {
			t, ok := plan.TaskIndex[wd.Task]
			if !ok {
				return nil, fmt.Errorf("schedule has %q working on unknown task %q", rs.Resource, wd.Task)
			}
			sol.Workers[w] = append(sol.Workers[w], models.WorkerDay{Day: wd.Day, Task: t})
		}
	}

	return sol, nil
}

// checkSpan requires 0 <= start <= finish <= horizon.
func checkSpan(row ScheduledTask, horizon int64) error {
	switch {
	case row.StartDay < 0:
		return fmt.Errorf("start day %d is negative", row.StartDay)
	case row.FinishDay < row.StartDay:
		return fmt.Errorf("finish day %d is before start day %d", row.FinishDay, row.StartDay)
	case row.FinishDay > horizon:
		return fmt.Errorf("finish day %d is beyond horizon %d", row.FinishDay, horizon)
	}
	return nil
}

// SaveSchedule writes s as YAML to path, creating parent directories.
func SaveSchedule(path string, s *ScheduleFile) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshalling schedule: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating schedule directory: %w", err)
		}
	}
	if err := writeLocked(path, data, 0o644); err != nil {
		return fmt.Errorf("saving schedule: %w", err)
	}
	return nil
}

// LoadSchedule reads a schedule file written by SaveSchedule.
func LoadSchedule(path string) (*ScheduleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schedule %s: %w", path, err)
	}
	var s ScheduleFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing schedule %s: %w", path, err)
	}
	return &s, nil
}
