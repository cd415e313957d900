package models

// FixedAssignment pins a task to a preferred worker.
type FixedAssignment struct {
	Task     int `yaml:"task" json:"task"`
	Resource int `yaml:"resource" json:"resource"`
}

// ResourceBlackout marks a worker unavailable on the half-open day range [From, To).
type ResourceBlackout struct {
	Resource int   `yaml:"resource" json:"resource"`
	From     int64 `yaml:"from" json:"from"`
	To       int64 `yaml:"to" json:"to"`
}

// Days returns the number of days covered by the blackout.
func (b ResourceBlackout) Days() int64 {
	if b.To <= b.From {
		return 0
	}
	return b.To - b.From
}

// TaskWindow bounds when a task may run. A nil bound leaves that side open.
type TaskWindow struct {
	Task int `yaml:"task" json:"task"`
	// NotBefore is the earliest allowed start day.
	NotBefore *int64 `yaml:"not_before,omitempty" json:"not_before,omitempty"`
	// NotAfter is the latest allowed end day (exclusive end).
	NotAfter *int64 `yaml:"not_after,omitempty" json:"not_after,omitempty"`
}

// Problem is the full input of a scheduling solve.
type Problem struct {
	Resources []Resource         `yaml:"resources" json:"resources"`
	Tasks     []Task             `yaml:"tasks" json:"tasks"`
	Fixed     []FixedAssignment  `yaml:"fixed,omitempty" json:"fixed,omitempty"`
	Blackouts []ResourceBlackout `yaml:"blackouts,omitempty" json:"blackouts,omitempty"`
	Windows   []TaskWindow       `yaml:"windows,omitempty" json:"windows,omitempty"`
}

// NumTasks returns the number of tasks in the problem.
func (p Problem) NumTasks() int { return len(p.Tasks) }

// NumWorkers returns the number of resources in the problem.
func (p Problem) NumWorkers() int { return len(p.Resources) }
