package observability

import (
	"fmt"
	"time"
)

// SolveMetrics holds solver statistics derived from the event log.
type SolveMetrics struct {
	Runs              int            `json:"runs"`
	Solves            int            `json:"solves"`
	Phases            int            `json:"phases"`
	SolvesByStatus    map[string]int `json:"solves_by_status"`
	SolvesByObjective map[string]int `json:"solves_by_objective"`
	RunsByMode        map[string]int `json:"runs_by_mode"`
	TotalSolveSeconds float64        `json:"total_solve_seconds"`
	MaxSolveSeconds   float64        `json:"max_solve_seconds"`
	LastRunID         string         `json:"last_run_id,omitempty"`
	EventCount        int            `json:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*SolveMetrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*SolveMetrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &SolveMetrics{
		SolvesByStatus:    make(map[string]int),
		SolvesByObjective: make(map[string]int),
		RunsByMode:        make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventSolveFinished:
			m.Solves++
			if status, ok := event.Data["status"].(string); ok {
				m.SolvesByStatus[status]++
			}
			if objective, ok := event.Data["objective"].(string); ok {
				m.SolvesByObjective[objective]++
			}
			// JSON numbers decode as float64.
			if secs, ok := event.Data["wall_time_s"].(float64); ok {
				m.TotalSolveSeconds += secs
				if secs > m.MaxSolveSeconds {
					m.MaxSolveSeconds = secs
				}
			}
		case EventPhaseFinished:
			m.Phases++
		case EventPlanCompleted:
			m.Runs++
			if mode, ok := event.Data["mode"].(string); ok {
				m.RunsByMode[mode]++
			}
			if id, ok := event.Data["run_id"].(string); ok {
				m.LastRunID = id
			}
		}
	}

	return m, nil
}
