package models

// Task is a unit of work to be scheduled on the day calendar. Its duration in
// days is always derived from EffortHours and never stored.
type Task struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	EffortHours int64  `yaml:"effort_hours" json:"effort_hours"`
	// Skill is the skill an assignee must hold. Empty means any worker will do.
	Skill string `yaml:"skill,omitempty" json:"skill,omitempty"`
	// DependsOn holds indices into the task list of the enclosing Problem.
	DependsOn []int `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
}

// RequiresSkill reports whether the task restricts its assignee by skill.
func (t Task) RequiresSkill() bool {
	return t.Skill != ""
}

// Label returns the display name of the task, falling back to its ID.
func (t Task) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// Resource is a worker that can be assigned to tasks.
type Resource struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name,omitempty" json:"name,omitempty"`
	CostPerHour int64    `yaml:"cost_per_hour" json:"cost_per_hour"`
	Skills      []string `yaml:"skills,omitempty" json:"skills,omitempty"`
}

// HasSkill reports whether the resource holds the given skill.
func (r Resource) HasSkill(skill string) bool {
	for _, s := range r.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// CanPerform reports whether the resource satisfies the task's skill requirement.
func (r Resource) CanPerform(t Task) bool {
	return !t.RequiresSkill() || r.HasSkill(t.Skill)
}

// Label returns the display name of the resource, falling back to its ID.
func (r Resource) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}
