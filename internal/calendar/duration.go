// Package calendar converts task effort into whole working days and derives
// the day horizon that bounds a schedule.
package calendar

import (
	"time"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// HoursPerDay is the number of effort hours a worker completes in one day.
const HoursPerDay = 8

// DurationDays returns ceil(effortHours / HoursPerDay). Non-positive effort
// yields zero days.
func DurationDays(effortHours int64) int64 {
	if effortHours <= 0 {
		return 0
	}
	return (effortHours + HoursPerDay - 1) / HoursPerDay
}

// TaskDays returns the duration of a task in days.
func TaskDays(t models.Task) int64 {
	return DurationDays(t.EffortHours)
}

// Horizon returns the sum of all task durations, which is always long enough
// to pack the tasks one after another.
func Horizon(tasks []models.Task) int64 {
	var total int64
	for _, t := range tasks {
		total += TaskDays(t)
	}
	return total
}

// ProblemHorizon extends Horizon so that sequential packing stays possible
// when tasks have earliest-start windows or workers have blackout days.
func ProblemHorizon(p models.Problem) int64 {
	h := Horizon(p.Tasks)

	var latestStart int64
	for _, w := range p.Windows {
		if w.NotBefore != nil && *w.NotBefore > latestStart {
			latestStart = *w.NotBefore
		}
	}

	var blackout int64
	for _, b := range p.Blackouts {
		blackout += b.Days()
	}

	if h == 0 {
		// No task occupies a day, so nothing can be pushed out.
		return latestStart
	}
	return h + latestStart + blackout
}

// DayToDate maps a day offset onto the calendar starting at start.
func DayToDate(start time.Time, day int64) time.Time {
	return start.AddDate(0, 0, int(day))
}
