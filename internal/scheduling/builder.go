// Package scheduling encodes the day-resolution workforce scheduling problem
// as a CP-SAT model: task timing, per-day occupancy, worker bindings and the
// objective expressions that read them.
package scheduling

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/valter-silva-au/staffplan/internal/calendar"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// Model is a built constraint model together with indices into its variables.
// Dimensions: tasks x days x workers, with days in [0, NumDays).
type Model struct {
	Builder *cpmodel.Builder
	Problem models.Problem
	NumDays int64

	Durations []int64
	Starts    []cpmodel.IntVar
	Intervals []cpmodel.IntervalVar
	// DayOverlap[t][d] is true iff task t occupies day d.
	DayOverlap [][]cpmodel.BoolVar
	// TaskWorker[t][w] is true iff w is the assignee of t.
	TaskWorker [][]cpmodel.BoolVar
	// TaskDayWorker[t][d][w] is true iff w works on t on day d.
	TaskDayWorker [][][]cpmodel.BoolVar

	objectives map[models.Objective]cpmodel.LinearArgument
}

// NumTasks returns the number of tasks in the model.
func (m *Model) NumTasks() int { return len(m.Problem.Tasks) }

// NumWorkers returns the number of workers in the model.
func (m *Model) NumWorkers() int { return len(m.Problem.Resources) }

// End returns the exclusive end day expression of task t.
func (m *Model) End(t int) *cpmodel.LinearExpr {
	return cpmodel.NewLinearExpr().Add(m.Starts[t]).AddConstant(m.Durations[t])
}

// Build allocates every decision variable and posts the structural
// constraints. It never fails: contradictions surface as infeasibility when
// the model is solved. Callers are expected to run Validate first so that all
// indices are in range.
func Build(p models.Problem) *Model {
	cp := cpmodel.NewCpModelBuilder()
	numTasks, numWorkers := len(p.Tasks), len(p.Resources)
	numDays := calendar.ProblemHorizon(p)

	m := &Model{
		Builder:       cp,
		Problem:       p,
		NumDays:       numDays,
		Durations:     make([]int64, numTasks),
		Starts:        make([]cpmodel.IntVar, numTasks),
		Intervals:     make([]cpmodel.IntervalVar, numTasks),
		DayOverlap:    make([][]cpmodel.BoolVar, numTasks),
		TaskWorker:    make([][]cpmodel.BoolVar, numTasks),
		TaskDayWorker: make([][][]cpmodel.BoolVar, numTasks),
		objectives:    make(map[models.Objective]cpmodel.LinearArgument),
	}

	m.addIntervals()
	m.addDependencies()
	m.addAssignments(numWorkers)
	m.addDailyCoverage()
	m.addWorkerExclusivity()
	m.addUniqueAssignee()
	m.addSkillFilter()
	m.addFixedAssignments()
	m.addBlackouts()
	m.addTaskWindows()

	return m
}

// addIntervals creates a fixed-size interval per task inside [0, NumDays] and
// partitions every day into before / overlap / after.
func (m *Model) addIntervals() {
	cp := m.Builder
	for t, task := range m.Problem.Tasks {
		dur := calendar.TaskDays(task)
		m.Durations[t] = dur

		latest := m.NumDays - dur
		if latest < 0 {
			latest = 0
		}
		start := cp.NewIntVarFromDomain(cpmodel.NewDomain(0, latest)).WithName(fmt.Sprintf("start_task%d", t))
		m.Starts[t] = start
		m.Intervals[t] = cp.NewFixedSizeIntervalVar(start, dur)
		end := m.End(t)

		m.DayOverlap[t] = make([]cpmodel.BoolVar, m.NumDays)
		for d := int64(0); d < m.NumDays; d++ {
			day, next := cpmodel.NewConstant(d), cpmodel.NewConstant(d+1)
			overlap := cp.NewBoolVar().WithName(fmt.Sprintf("overlap_t%d_d%d", t, d))
			before := cp.NewBoolVar().WithName(fmt.Sprintf("before_t%d_d%d", t, d))
			after := cp.NewBoolVar().WithName(fmt.Sprintf("after_t%d_d%d", t, d))

			// Intervals are open on the right.
			cp.AddLessOrEqual(start, day).OnlyEnforceIf(overlap)
			cp.AddGreaterOrEqual(end, next).OnlyEnforceIf(overlap)
			cp.AddLessOrEqual(end, day).OnlyEnforceIf(before)
			cp.AddGreaterOrEqual(start, next).OnlyEnforceIf(after)
			cp.AddExactlyOne(overlap, before, after)

			m.DayOverlap[t][d] = overlap
		}
	}
}

// addDependencies makes each task start no earlier than every predecessor ends.
func (m *Model) addDependencies() {
	for t, task := range m.Problem.Tasks {
		for _, dep := range task.DependsOn {
			m.Builder.AddGreaterOrEqual(m.Starts[t], m.End(dep))
		}
	}
}

// addAssignments creates the aggregate and day-level assignment booleans and
// links them: the aggregate is true iff some day-level boolean is.
func (m *Model) addAssignments(numWorkers int) {
	cp := m.Builder
	zero, one := cpmodel.NewConstant(0), cpmodel.NewConstant(1)

	for t := range m.Problem.Tasks {
		m.TaskWorker[t] = make([]cpmodel.BoolVar, numWorkers)
		m.TaskDayWorker[t] = make([][]cpmodel.BoolVar, m.NumDays)
		for d := int64(0); d < m.NumDays; d++ {
			m.TaskDayWorker[t][d] = make([]cpmodel.BoolVar, numWorkers)
		}

		for w := 0; w < numWorkers; w++ {
			assigned := cp.NewBoolVar().WithName(fmt.Sprintf("task%d_worker%d", t, w))
			m.TaskWorker[t][w] = assigned

			days := cpmodel.NewLinearExpr()
			for d := int64(0); d < m.NumDays; d++ {
				dw := cp.NewBoolVar().WithName(fmt.Sprintf("task%d_day%d_worker%d", t, d, w))
				m.TaskDayWorker[t][d][w] = dw
				days.Add(dw)
			}

			// A zero-length task occupies no day, so its assignee has no
			// day-level work to point at.
			if m.Durations[t] > 0 {
				cp.AddGreaterOrEqual(days, one).OnlyEnforceIf(assigned)
			}
			cp.AddEquality(days, zero).OnlyEnforceIf(assigned.Not())
		}
	}
}

// addDailyCoverage requires exactly one worker on every occupied day of a task
// and nobody on the days it does not occupy.
func (m *Model) addDailyCoverage() {
	cp := m.Builder
	zero, one := cpmodel.NewConstant(0), cpmodel.NewConstant(1)

	for t := range m.Problem.Tasks {
		for d := int64(0); d < m.NumDays; d++ {
			works := cpmodel.NewLinearExpr()
			for _, dw := range m.TaskDayWorker[t][d] {
				works.Add(dw)
			}
			cp.AddEquality(works, one).OnlyEnforceIf(m.DayOverlap[t][d])
			cp.AddEquality(works, zero).OnlyEnforceIf(m.DayOverlap[t][d].Not())
		}
	}
}

// addWorkerExclusivity lets a worker do at most one task per day.
func (m *Model) addWorkerExclusivity() {
	for w := 0; w < m.NumWorkers(); w++ {
		for d := int64(0); d < m.NumDays; d++ {
			tasks := make([]cpmodel.BoolVar, 0, m.NumTasks())
			for t := range m.Problem.Tasks {
				tasks = append(tasks, m.TaskDayWorker[t][d][w])
			}
			m.Builder.AddAtMostOne(tasks...)
		}
	}
}

// addUniqueAssignee binds every task to exactly one worker.
func (m *Model) addUniqueAssignee() {
	for t := range m.Problem.Tasks {
		m.Builder.AddExactlyOne(m.TaskWorker[t]...)
	}
}

// addSkillFilter rules out workers lacking a task's required skill.
func (m *Model) addSkillFilter() {
	zero := cpmodel.NewConstant(0)
	for t, task := range m.Problem.Tasks {
		if !task.RequiresSkill() {
			continue
		}
		for w, r := range m.Problem.Resources {
			if !r.HasSkill(task.Skill) {
				m.Builder.AddEquality(m.TaskWorker[t][w], zero)
			}
		}
	}
}

func (m *Model) addFixedAssignments() {
	one := cpmodel.NewConstant(1)
	for _, fa := range m.Problem.Fixed {
		m.Builder.AddEquality(m.TaskWorker[fa.Task][fa.Resource], one)
	}
}

// addBlackouts clears every day-level assignment of a worker inside its
// unavailable range.
func (m *Model) addBlackouts() {
	zero := cpmodel.NewConstant(0)
	for _, b := range m.Problem.Blackouts {
		from, to := b.From, b.To
		if from < 0 {
			from = 0
		}
		if to > m.NumDays {
			to = m.NumDays
		}
		for d := from; d < to; d++ {
			for t := range m.Problem.Tasks {
				m.Builder.AddEquality(m.TaskDayWorker[t][d][b.Resource], zero)
			}
		}
	}
}

func (m *Model) addTaskWindows() {
	for _, win := range m.Problem.Windows {
		if win.NotBefore != nil {
			m.Builder.AddGreaterOrEqual(m.Starts[win.Task], cpmodel.NewConstant(*win.NotBefore))
		}
		if win.NotAfter != nil {
			m.Builder.AddLessOrEqual(m.End(win.Task), cpmodel.NewConstant(*win.NotAfter))
		}
	}
}
