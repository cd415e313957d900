package models

import (
	"fmt"
	"strings"
)

// Objective identifies one of the scalar quantities a solve can minimize.
type Objective string

const (
	ObjectiveCost      Objective = "cost"
	ObjectiveDuration  Objective = "duration"
	ObjectiveResources Objective = "resources"
)

// AllObjectives lists every objective in canonical order.
var AllObjectives = []Objective{ObjectiveCost, ObjectiveDuration, ObjectiveResources}

// ObjectiveWeighted marks a solution produced by the weighted orchestrator.
const ObjectiveWeighted Objective = "weighted"

// Valid reports whether o is one of the minimizable objectives.
func (o Objective) Valid() bool {
	switch o {
	case ObjectiveCost, ObjectiveDuration, ObjectiveResources:
		return true
	}
	return false
}

// ParseObjective converts a user-supplied name into an Objective.
func ParseObjective(s string) (Objective, error) {
	o := Objective(strings.ToLower(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("unknown objective %q (use cost, duration, resources)", s)
	}
	return o, nil
}

// ParseObjectives converts a list of names, preserving order.
func ParseObjectives(names []string) ([]Objective, error) {
	out := make([]Objective, 0, len(names))
	for _, n := range names {
		o, err := ParseObjective(n)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// ObjectivesOf returns the keys of a weight map in canonical order.
func ObjectivesOf(weights map[Objective]float64) []Objective {
	out := make([]Objective, 0, len(weights))
	for _, o := range AllObjectives {
		if _, ok := weights[o]; ok {
			out = append(out, o)
		}
	}
	return out
}
