// Package mcp provides an MCP (Model Context Protocol) server that exposes
// staffplan scheduling as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/internal/observability"
	"github.com/valter-silva-au/staffplan/internal/storage"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// Server wraps the planner and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	planner     core.Planner
	metricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server over planner. metricsCalc may be nil if
// the event log is disabled.
func NewServer(planner core.Planner, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		planner:     planner,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "staffplan", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type resourceInput struct {
	ID          string   `json:"id" jsonschema:"unique resource identifier"`
	Name        string   `json:"name,omitempty"`
	CostPerHour int64    `json:"cost_per_hour" jsonschema:"hourly rate in whole currency units"`
	Skills      []string `json:"skills,omitempty"`
}

type taskInput struct {
	ID          string   `json:"id" jsonschema:"unique task identifier"`
	Name        string   `json:"name,omitempty"`
	Summary     bool     `json:"summary,omitempty" jsonschema:"true for a grouping task that is never scheduled itself"`
	Parent      string   `json:"parent,omitempty" jsonschema:"ID of the enclosing summary task"`
	EffortHours int64    `json:"effort_hours,omitempty" jsonschema:"work in hours; one day holds 8 hours"`
	Skill       string   `json:"skill,omitempty" jsonschema:"skill the assignee must hold"`
	DependsOn   []string `json:"depends_on,omitempty" jsonschema:"IDs of tasks that must finish first"`
}

type fixedInput struct {
	Task     string `json:"task"`
	Resource string `json:"resource"`
}

type blackoutInput struct {
	Resource string `json:"resource"`
	From     int64  `json:"from" jsonschema:"first unavailable day"`
	To       int64  `json:"to" jsonschema:"first available day after the blackout"`
}

type windowInput struct {
	Task      string `json:"task"`
	NotBefore *int64 `json:"not_before,omitempty" jsonschema:"earliest start day"`
	NotAfter  *int64 `json:"not_after,omitempty" jsonschema:"latest end day"`
}

type solveScheduleInput struct {
	Name           string             `json:"name,omitempty"`
	StartDate      string             `json:"start_date,omitempty" jsonschema:"project start date (YYYY-MM-DD). Defaults to today."`
	Resources      []resourceInput    `json:"resources"`
	Tasks          []taskInput        `json:"tasks"`
	Fixed          []fixedInput       `json:"fixed,omitempty"`
	Blackouts      []blackoutInput    `json:"blackouts,omitempty"`
	Windows        []windowInput      `json:"windows,omitempty"`
	Objectives     []string           `json:"objectives,omitempty" jsonschema:"objectives in priority order (cost, duration, resources). Defaults to cost."`
	Weights        map[string]float64 `json:"weights,omitempty" jsonschema:"objective weights for a weighted solve; excludes objectives"`
	MaxTimeSeconds float64            `json:"max_time_seconds,omitempty" jsonschema:"per-solve time budget in seconds"`
}

type totalsOutput struct {
	Duration  int64 `json:"duration"`
	Cost      int64 `json:"cost"`
	Resources int   `json:"resources"`
}

type scheduledTaskOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Summary   bool   `json:"summary,omitempty"`
	StartDay  int64  `json:"start_day"`
	FinishDay int64  `json:"finish_day"`
	Start     string `json:"start"`
	Finish    string `json:"finish"`
	Resource  string `json:"resource,omitempty"`
}

type workDayOutput struct {
	Day  int64  `json:"day"`
	Date string `json:"date"`
	Task string `json:"task"`
}

type resourceScheduleOutput struct {
	Resource string          `json:"resource"`
	Days     []workDayOutput `json:"days"`
}

type phaseOutput struct {
	Index     int    `json:"index"`
	Objective string `json:"objective"`
	Status    string `json:"status"`
	Value     int64  `json:"value"`
}

type solveScheduleOutput struct {
	RunID          string                   `json:"run_id"`
	Mode           string                   `json:"mode"`
	Status         string                   `json:"status"`
	Objective      string                   `json:"objective"`
	ObjectiveValue int64                    `json:"objective_value"`
	PlanDigest     string                   `json:"plan_digest"`
	StartDate      string                   `json:"start_date"`
	Totals         totalsOutput             `json:"totals"`
	Tasks          []scheduledTaskOutput    `json:"tasks"`
	Resources      []resourceScheduleOutput `json:"resources"`
	Phases         []phaseOutput            `json:"phases,omitempty"`
}

type estimateTaskInput struct {
	ID          string `json:"id"`
	EffortHours int64  `json:"effort_hours"`
}

type estimateDurationsInput struct {
	Tasks []estimateTaskInput `json:"tasks"`
}

type estimateDurationsOutput struct {
	Tasks   []core.TaskEstimate `json:"tasks"`
	Horizon int64               `json:"horizon"`
}

type getSolveMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type solveMetricsOutput struct {
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
	OldestEvent       string         `json:"oldest_event,omitempty"`
	NewestEvent       string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "solve_schedule",
		Description: "Assign tasks to resources on a day calendar. Minimizes cost, duration or resources, in priority order or by weights, under dependency, skill and availability constraints.",
	}, s.handleSolveSchedule)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "estimate_durations",
		Description: "Derive each task's duration in days from its effort hours, and the horizon of running them all back to back.",
	}, s.handleEstimateDurations)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_solve_metrics",
		Description: "Get aggregated solver metrics from the event log, including runs, solves by status and objective, and solve time.",
	}, s.handleGetSolveMetrics)
}

// --- Tool handlers ---

func (s *Server) handleSolveSchedule(_ context.Context, _ *gomcp.CallToolRequest, input solveScheduleInput) (*gomcp.CallToolResult, solveScheduleOutput, error) {
	plan, err := planFromInput(input).Compile()
	if err != nil {
		return errorResult(fmt.Sprintf("compiling plan: %s", err)), solveScheduleOutput{}, nil
	}

	req := core.SolveRequest{
		Problem: plan.Problem,
		MaxTime: time.Duration(input.MaxTimeSeconds * float64(time.Second)),
		Digest:  plan.Digest,
	}
	if req.Objectives, err = models.ParseObjectives(input.Objectives); err != nil {
		return errorResult(err.Error()), solveScheduleOutput{}, nil
	}
	if len(input.Weights) > 0 {
		req.Weights = make(map[models.Objective]float64, len(input.Weights))
		for name, w := range input.Weights {
			o, err := models.ParseObjective(name)
			if err != nil {
				return errorResult(err.Error()), solveScheduleOutput{}, nil
			}
			req.Weights[o] = w
		}
	}
	if len(req.Objectives) == 0 && len(req.Weights) == 0 {
		req.Objectives = []models.Objective{models.ObjectiveCost}
	}

	res, err := s.planner.Solve(req)
	if err != nil {
		return errorResult(fmt.Sprintf("solving: %s", err)), solveScheduleOutput{}, nil
	}
	if !res.Solution.Found() {
		return errorResult(fmt.Sprintf("no schedule found: solve ended %s", res.Solution.Status)), solveScheduleOutput{}, nil
	}

	sched, err := storage.BuildSchedule(plan, res.Solution, storage.RunInfo{
		RunID:      res.RunID,
		Mode:       string(res.Mode),
		Objectives: objectiveNames(req),
	})
	if err != nil {
		return errorResult(err.Error()), solveScheduleOutput{}, nil
	}

	return nil, scheduleToOutput(sched), nil
}

func (s *Server) handleEstimateDurations(_ context.Context, _ *gomcp.CallToolRequest, input estimateDurationsInput) (*gomcp.CallToolResult, estimateDurationsOutput, error) {
	tasks := make([]models.Task, len(input.Tasks))
	for i, t := range input.Tasks {
		if t.EffortHours < 0 {
			return errorResult(fmt.Sprintf("task %s: effort_hours must not be negative", t.ID)), estimateDurationsOutput{}, nil
		}
		tasks[i] = models.Task{ID: t.ID, EffortHours: t.EffortHours}
	}

	est := s.planner.Estimate(tasks)
	return nil, estimateDurationsOutput{Tasks: est.Tasks, Horizon: est.Horizon}, nil
}

func (s *Server) handleGetSolveMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getSolveMetricsInput) (*gomcp.CallToolResult, solveMetricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := solveMetricsOutput{
		Runs:              metrics.Runs,
		Solves:            metrics.Solves,
		Phases:            metrics.Phases,
		SolvesByStatus:    metrics.SolvesByStatus,
		SolvesByObjective: metrics.SolvesByObjective,
		RunsByMode:        metrics.RunsByMode,
		TotalSolveSeconds: metrics.TotalSolveSeconds,
		MaxSolveSeconds:   metrics.MaxSolveSeconds,
		LastRunID:         metrics.LastRunID,
		EventCount:        metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func planFromInput(in solveScheduleInput) storage.PlanFile {
	f := storage.PlanFile{
		Version:   "1.0",
		Name:      in.Name,
		StartDate: in.StartDate,
	}
	for _, r := range in.Resources {
		f.Resources = append(f.Resources, models.Resource{ID: r.ID, Name: r.Name, CostPerHour: r.CostPerHour, Skills: r.Skills})
	}
	for _, t := range in.Tasks {
		f.Tasks = append(f.Tasks, storage.TaskEntry{
			ID:          t.ID,
			Name:        t.Name,
			Summary:     t.Summary,
			Parent:      t.Parent,
			EffortHours: t.EffortHours,
			Skill:       t.Skill,
			DependsOn:   t.DependsOn,
		})
	}
	for _, fx := range in.Fixed {
		f.Fixed = append(f.Fixed, storage.FixedEntry{Task: fx.Task, Resource: fx.Resource})
	}
	for _, b := range in.Blackouts {
		f.Blackouts = append(f.Blackouts, storage.BlackoutEntry{Resource: b.Resource, From: b.From, To: b.To})
	}
	for _, w := range in.Windows {
		f.Windows = append(f.Windows, storage.WindowEntry{Task: w.Task, NotBefore: w.NotBefore, NotAfter: w.NotAfter})
	}
	return f
}

func objectiveNames(req core.SolveRequest) []string {
	objectives := req.Objectives
	if len(req.Weights) > 0 {
		objectives = models.ObjectivesOf(req.Weights)
	}
	names := make([]string, len(objectives))
	for i, o := range objectives {
		names[i] = string(o)
	}
	return names
}

func scheduleToOutput(s *storage.ScheduleFile) solveScheduleOutput {
	out := solveScheduleOutput{
		RunID:          s.RunID,
		Mode:           s.Mode,
		Status:         string(s.Status),
		Objective:      string(s.Objective),
		ObjectiveValue: s.ObjectiveValue,
		PlanDigest:     s.PlanDigest,
		StartDate:      s.StartDate,
		Totals:         totalsOutput{Duration: s.Totals.Duration, Cost: s.Totals.Cost, Resources: s.Totals.Resources},
		Tasks:          make([]scheduledTaskOutput, len(s.Tasks)),
		Resources:      make([]resourceScheduleOutput, len(s.Resources)),
	}
	for i, t := range s.Tasks {
		out.Tasks[i] = scheduledTaskOutput{
			ID:        t.ID,
			Name:      t.Name,
			Summary:   t.Summary,
			StartDay:  t.StartDay,
			FinishDay: t.FinishDay,
			Start:     t.Start,
			Finish:    t.Finish,
			Resource:  t.Resource,
		}
	}
	for i, r := range s.Resources {
		days := make([]workDayOutput, len(r.Days))
		for j, d := range r.Days {
			days[j] = workDayOutput{Day: d.Day, Date: d.Date, Task: d.Task}
		}
		out.Resources[i] = resourceScheduleOutput{Resource: r.Resource, Days: days}
	}
	for _, p := range s.Phases {
		out.Phases = append(out.Phases, phaseOutput{
			Index:     p.Index,
			Objective: string(p.Objective),
			Status:    string(p.Status),
			Value:     p.Value,
		})
	}
	return out
}

func emptyMetricsOutput() solveMetricsOutput {
	return solveMetricsOutput{
		SolvesByStatus:    make(map[string]int),
		SolvesByObjective: make(map[string]int),
		RunsByMode:        make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
