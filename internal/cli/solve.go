package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/internal/storage"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

var (
	solveInput      string
	solveOutput     string
	solveObjectives []string
	solveWeights    string
	solveMaxTime    float64
	solveCompact    bool
	solveJSON       bool
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Find a staffing schedule for a plan",
	Long: `Solve a plan file and print the resulting schedule.

Objectives given with -m are minimized in priority order: each later
objective is only improved without worsening the earlier ones. Weights given
with -w blend every named objective into one normalized score instead.
Without either flag the plan is solved for minimum cost.

Examples:
  staffplan solve -i plan.yaml
  staffplan solve -i plan.yaml -m duration -m cost -o schedule.yaml
  staffplan solve -i plan.yaml -w cost=0.8,duration=0.2 -t 30`,
	Args: cobra.NoArgs,
	RunE: runSolve,
}

func runSolve(cmd *cobra.Command, args []string) error {
	if Planner == nil {
		return fmt.Errorf("planner not initialized")
	}

	if solveWeights != "" && len(solveObjectives) > 0 {
		return fmt.Errorf("use either -m or -w, not both")
	}

	plan, err := storage.LoadPlan(solveInput)
	if err != nil {
		return err
	}

	req := core.SolveRequest{
		Problem: plan.Problem,
		MaxTime: time.Duration(solveMaxTime * float64(time.Second)),
		Digest:  plan.Digest,
	}
	switch {
	case solveWeights != "":
		if req.Weights, err = parseWeights(solveWeights); err != nil {
			return err
		}
	case len(solveObjectives) > 0:
		if req.Objectives, err = models.ParseObjectives(solveObjectives); err != nil {
			return err
		}
	default:
		req.Objectives = []models.Objective{models.ObjectiveCost}
	}

	res, err := Planner.Solve(req)
	if err != nil {
		return err
	}
	if !res.Solution.Found() {
		return fmt.Errorf("no schedule found: solve ended %s", res.Solution.Status)
	}

	objectives := req.Objectives
	if req.Weights != nil {
		objectives = models.ObjectivesOf(req.Weights)
	}
	names := make([]string, len(objectives))
	for i, o := range objectives {
		names[i] = string(o)
	}

	sched, err := storage.BuildSchedule(plan, res.Solution, storage.RunInfo{
		RunID:      res.RunID,
		Mode:       string(res.Mode),
		Objectives: names,
	})
	if err != nil {
		return err
	}

	if solveOutput != "" {
		if err := storage.SaveSchedule(solveOutput, sched); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if solveJSON {
		data, err := json.MarshalIndent(sched, "", "  ")
		if err != nil {
			return fmt.Errorf("formatting schedule as JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintln(out, RenderSummary(sched))
	fmt.Fprintln(out, RenderTasks(sched, solveCompact))
	fmt.Fprint(out, RenderWorkers(sched, solveCompact))
	if solveOutput != "" {
		fmt.Fprintf(out, "\nSchedule written to %s\n", solveOutput)
	}
	return nil
}

// parseWeights parses "cost=0.8,duration=0.2" into a weight map.
func parseWeights(s string) (map[models.Objective]float64, error) {
	weights := make(map[models.Objective]float64)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid weight %q (use objective=weight)", part)
		}
		o, err := models.ParseObjective(name)
		if err != nil {
			return nil, err
		}
		if _, dup := weights[o]; dup {
			return nil, fmt.Errorf("objective %s weighted twice", o)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight for %s: %w", o, err)
		}
		weights[o] = w
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("no weights given")
	}
	return weights, nil
}

func init() {
	solveCmd.Flags().StringVarP(&solveInput, "input", "i", "", "Plan file to solve")
	solveCmd.Flags().StringVarP(&solveOutput, "output", "o", "", "Write the schedule to this YAML file")
	solveCmd.Flags().StringArrayVarP(&solveObjectives, "objective", "m", nil, "Objective to minimize (cost, duration, resources); repeat for priority order")
	solveCmd.Flags().StringVarP(&solveWeights, "weights", "w", "", "Weighted objectives, e.g. cost=0.8,duration=0.2")
	solveCmd.Flags().Float64VarP(&solveMaxTime, "max-time", "t", 0, "Per-solve time budget in seconds (overrides config)")
	solveCmd.Flags().BoolVar(&solveCompact, "compact", false, "Print assignments as text instead of day grids")
	solveCmd.Flags().BoolVar(&solveJSON, "json", false, "Print the schedule as JSON")
	_ = solveCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(solveCmd)
}
