package solver

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"

	"github.com/valter-silva-au/staffplan/internal/calendar"
	"github.com/valter-silva-au/staffplan/internal/scheduling"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// Extract reads the task timings, assignees and per-worker day lists out of a
// response that carries a solution, and computes the realized objective
// values. When several aggregate booleans of a task are true the lowest
// worker index is reported.
func Extract(m *scheduling.Model, resp *cmpb.CpSolverResponse) *models.Solution {
	p := m.Problem
	sol := &models.Solution{
		Tasks:   make([]models.TaskAssignment, m.NumTasks()),
		Workers: make([][]models.WorkerDay, m.NumWorkers()),
		Hints:   HintsFromResponse(m, resp),
	}

	used := make([]bool, m.NumWorkers())
	for t := range p.Tasks {
		start := cpmodel.SolutionIntegerValue(resp, m.Starts[t])
		end := start + m.Durations[t]

		worker := -1
		for w := range p.Resources {
			if sol.Hints.TaskWorker[t][w] {
				worker = w
				break
			}
		}

		sol.Tasks[t] = models.TaskAssignment{Task: t, Start: start, End: end, Worker: worker}
		if end > sol.Duration {
			sol.Duration = end
		}
		if worker >= 0 {
			used[worker] = true
			sol.Cost += p.Tasks[t].EffortHours * p.Resources[worker].CostPerHour
		}
	}
	for _, u := range used {
		if u {
			sol.Resources++
		}
	}

	for w := range p.Resources {
		days := []models.WorkerDay{}
		for d := int64(0); d < m.NumDays; d++ {
			for t := range p.Tasks {
				if sol.Hints.TaskDayWorker[t][d][w] {
					days = append(days, models.WorkerDay{Day: d, Task: t})
				}
			}
		}
		sol.Workers[w] = days
	}

	return sol
}

// HintsFromResponse captures every decision variable of the response so a
// later solve can start from it.
func HintsFromResponse(m *scheduling.Model, resp *cmpb.CpSolverResponse) *models.Hints {
	h := newHints(m.NumTasks(), m.NumWorkers(), m.NumDays)
	for t := 0; t < m.NumTasks(); t++ {
		h.Starts[t] = cpmodel.SolutionIntegerValue(resp, m.Starts[t])
		for w := 0; w < m.NumWorkers(); w++ {
			h.TaskWorker[t][w] = cpmodel.SolutionBooleanValue(resp, m.TaskWorker[t][w])
		}
		for d := int64(0); d < m.NumDays; d++ {
			for w := 0; w < m.NumWorkers(); w++ {
				h.TaskDayWorker[t][d][w] = cpmodel.SolutionBooleanValue(resp, m.TaskDayWorker[t][d][w])
			}
		}
	}
	return h
}

// HintsFromAssignments rebuilds a full assignment from stored task timings
// and worker day lists, such as a schedule read back from disk. Work recorded
// at or past the horizon lands on one extra trailing day, so it is kept and
// rejected when pinned.
func HintsFromAssignments(p models.Problem, tasks []models.TaskAssignment, workers [][]models.WorkerDay) *models.Hints {
	horizon := calendar.ProblemHorizon(p)
	numDays := horizon
	for _, days := range workers {
		for _, wd := range days {
			if wd.Day >= horizon {
				numDays = horizon + 1
			}
		}
	}

	h := newHints(p.NumTasks(), p.NumWorkers(), numDays)
	for _, ta := range tasks {
		if ta.Task < 0 || ta.Task >= p.NumTasks() {
			continue
		}
		h.Starts[ta.Task] = ta.Start
		if ta.Worker >= 0 && ta.Worker < p.NumWorkers() {
			h.TaskWorker[ta.Task][ta.Worker] = true
		}
	}
	for w, days := range workers {
		if w >= p.NumWorkers() {
			break
		}
		for _, wd := range days {
			if wd.Task < 0 || wd.Task >= p.NumTasks() || wd.Day < 0 {
				continue
			}
			h.TaskDayWorker[wd.Task][min(wd.Day, horizon)][w] = true
		}
	}
	return h
}

func newHints(numTasks, numWorkers int, numDays int64) *models.Hints {
	h := &models.Hints{
		Starts:        make([]int64, numTasks),
		TaskWorker:    make([][]bool, numTasks),
		TaskDayWorker: make([][][]bool, numTasks),
	}
	for t := 0; t < numTasks; t++ {
		h.TaskWorker[t] = make([]bool, numWorkers)
		h.TaskDayWorker[t] = make([][]bool, numDays)
		for d := range h.TaskDayWorker[t] {
			h.TaskDayWorker[t][d] = make([]bool, numWorkers)
		}
	}
	return h
}
