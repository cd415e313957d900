package storage

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// DateFormat is the calendar date layout used in plan and schedule files.
const DateFormat = "2006-01-02"

// TaskEntry is one task of a plan file. Summary tasks group other tasks
// through their Parent field and are never scheduled themselves.
type TaskEntry struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name,omitempty"`
	Summary     bool     `yaml:"summary,omitempty"`
	Parent      string   `yaml:"parent,omitempty"`
	EffortHours int64    `yaml:"effort_hours,omitempty"`
	Skill       string   `yaml:"skill,omitempty"`
	DependsOn   []string `yaml:"depends_on,omitempty"`
}

// FixedEntry pins a task to a resource by ID.
type FixedEntry struct {
	Task     string `yaml:"task"`
	Resource string `yaml:"resource"`
}

// BlackoutEntry marks a resource unavailable on days [From, To).
type BlackoutEntry struct {
	Resource string `yaml:"resource"`
	From     int64  `yaml:"from"`
	To       int64  `yaml:"to"`
}

// WindowEntry bounds a task's start and end days.
type WindowEntry struct {
	Task      string `yaml:"task"`
	NotBefore *int64 `yaml:"not_before,omitempty"`
	NotAfter  *int64 `yaml:"not_after,omitempty"`
}

// PlanFile is the top-level structure of a plan YAML file.
type PlanFile struct {
	Version   string            `yaml:"version"`
	Name      string            `yaml:"name"`
	StartDate string            `yaml:"start_date"`
	Resources []models.Resource `yaml:"resources"`
	Tasks     []TaskEntry       `yaml:"tasks"`
	Fixed     []FixedEntry      `yaml:"fixed,omitempty"`
	Blackouts []BlackoutEntry   `yaml:"blackouts,omitempty"`
	Windows   []WindowEntry     `yaml:"windows,omitempty"`
}

// Plan is a compiled plan file: the solvable problem over its leaf tasks and
// the ID lookups needed to map solutions back onto the file.
type Plan struct {
	File    PlanFile
	Problem models.Problem
	Start   time.Time
	// Digest is the hex BLAKE3 hash of the canonical plan encoding.
	Digest string

	// LeafIDs[i] is the plan ID of problem task i.
	LeafIDs       []string
	TaskIndex     map[string]int
	ResourceIndex map[string]int
	// Leaves maps every summary task ID to the problem indices beneath it.
	Leaves map[string][]int
}

// LoadPlan reads and compiles the plan file at path.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan %s: %w", path, err)
	}
	plan, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("loading plan %s: %w", path, err)
	}
	return plan, nil
}

// ParsePlan decodes and compiles a plan document. Unknown keys are rejected.
func ParsePlan(data []byte) (*Plan, error) {
	var f PlanFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	return f.Compile()
}

// Compile resolves IDs into problem indices. Dependencies on a summary task
// expand to every leaf beneath it.
func (f PlanFile) Compile() (*Plan, error) {
	p := &Plan{
		File:          f,
		TaskIndex:     make(map[string]int),
		ResourceIndex: make(map[string]int),
		Leaves:        make(map[string][]int),
	}

	start := time.Now().UTC().Truncate(24 * time.Hour)
	if f.StartDate != "" {
		parsed, err := time.Parse(DateFormat, f.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date %q: %w", f.StartDate, err)
		}
		start = parsed
	}
	p.Start = start

	for i, r := range f.Resources {
		if r.ID == "" {
			return nil, fmt.Errorf("resource %d has no id", i)
		}
		if _, dup := p.ResourceIndex[r.ID]; dup {
			return nil, fmt.Errorf("duplicate resource id %q", r.ID)
		}
		p.ResourceIndex[r.ID] = i
		p.Problem.Resources = append(p.Problem.Resources, r)
	}

	entries := make(map[string]TaskEntry, len(f.Tasks))
	for i, t := range f.Tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("task %d has no id", i)
		}
		if _, dup := entries[t.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %q", t.ID)
		}
		entries[t.ID] = t
		if t.Summary {
			continue
		}
		p.TaskIndex[t.ID] = len(p.LeafIDs)
		p.LeafIDs = append(p.LeafIDs, t.ID)
		p.Problem.Tasks = append(p.Problem.Tasks, models.Task{
			ID:          t.ID,
			Name:        t.Name,
			EffortHours: t.EffortHours,
			Skill:       t.Skill,
		})
	}

	for _, t := range f.Tasks {
		if err := checkParents(t, entries); err != nil {
			return nil, err
		}
	}
	for _, t := range f.Tasks {
		if t.Summary {
			continue
		}
		for parent := t.Parent; parent != ""; parent = entries[parent].Parent {
			p.Leaves[parent] = append(p.Leaves[parent], p.TaskIndex[t.ID])
		}
	}

	for _, t := range f.Tasks {
		if t.Summary {
			if len(t.DependsOn) > 0 {
				return nil, fmt.Errorf("summary task %q cannot have dependencies", t.ID)
			}
			continue
		}
		idx := p.TaskIndex[t.ID]
		seen := make(map[int]bool)
		for _, dep := range t.DependsOn {
			e, ok := entries[dep]
			if !ok {
				return nil, fmt.Errorf("task %q depends on unknown task %q", t.ID, dep)
			}
			targets := []int{p.TaskIndex[dep]}
			if e.Summary {
				targets = p.Leaves[dep]
			}
			for _, d := range targets {
				if d == idx {
					return nil, fmt.Errorf("task %q depends on itself through %q", t.ID, dep)
				}
				if !seen[d] {
					seen[d] = true
					p.Problem.Tasks[idx].DependsOn = append(p.Problem.Tasks[idx].DependsOn, d)
				}
			}
		}
	}

	for _, fe := range f.Fixed {
		t, err := p.leaf(fe.Task, "fixed assignment")
		if err != nil {
			return nil, err
		}
		r, err := p.resource(fe.Resource, "fixed assignment")
		if err != nil {
			return nil, err
		}
		p.Problem.Fixed = append(p.Problem.Fixed, models.FixedAssignment{Task: t, Resource: r})
	}
	for _, be := range f.Blackouts {
		r, err := p.resource(be.Resource, "blackout")
		if err != nil {
			return nil, err
		}
		p.Problem.Blackouts = append(p.Problem.Blackouts, models.ResourceBlackout{Resource: r, From: be.From, To: be.To})
	}
	for _, we := range f.Windows {
		t, err := p.leaf(we.Task, "window")
		if err != nil {
			return nil, err
		}
		p.Problem.Windows = append(p.Problem.Windows, models.TaskWindow{Task: t, NotBefore: we.NotBefore, NotAfter: we.NotAfter})
	}

	digest, err := f.Digest()
	if err != nil {
		return nil, err
	}
	p.Digest = digest
	return p, nil
}

// Digest returns the hex BLAKE3 hash of the plan's canonical YAML encoding.
func (f PlanFile) Digest() (string, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encoding plan for digest: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (p *Plan) leaf(id, what string) (int, error) {
	idx, ok := p.TaskIndex[id]
	if !ok {
		return 0, fmt.Errorf("%s names unknown or summary task %q", what, id)
	}
	return idx, nil
}

func (p *Plan) resource(id, what string) (int, error) {
	idx, ok := p.ResourceIndex[id]
	if !ok {
		return 0, fmt.Errorf("%s names unknown resource %q", what, id)
	}
	return idx, nil
}

// checkParents walks t's parent chain, requiring every parent to exist, be a
// summary task and not lead back to a task already on the chain.
func checkParents(t TaskEntry, entries map[string]TaskEntry) error {
	visited := map[string]bool{t.ID: true}
	for parent := t.Parent; parent != ""; {
		e, ok := entries[parent]
		if !ok {
			return fmt.Errorf("task %q has unknown parent %q", t.ID, parent)
		}
		if !e.Summary {
			return fmt.Errorf("task %q has parent %q, which is not a summary task", t.ID, parent)
		}
		if visited[parent] {
			return fmt.Errorf("task %q is part of a parent cycle through %q", t.ID, parent)
		}
		visited[parent] = true
		parent = e.Parent
	}
	return nil
}
