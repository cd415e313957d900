package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/calendar"
	"github.com/valter-silva-au/staffplan/internal/storage"
)

var (
	estimateInput string
	estimateJSON  bool
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Show task durations and the day horizon of a plan",
	Long: `Convert each task's effort into whole working days and print the horizon
the solver searches within. Summary tasks are omitted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Planner == nil {
			return fmt.Errorf("planner not initialized")
		}

		plan, err := storage.LoadPlan(estimateInput)
		if err != nil {
			return err
		}

		est := Planner.Estimate(plan.Problem.Tasks)
		out := cmd.OutOrStdout()

		if estimateJSON {
			data, err := json.MarshalIndent(est, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting estimate as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "  %-20s %8s %6s\n", "TASK", "HOURS", "DAYS")
		for _, t := range est.Tasks {
			fmt.Fprintf(out, "  %-20s %8d %6d\n", t.ID, t.EffortHours, t.Days)
		}
		fmt.Fprintf(out, "\n  %-20s %15d\n", "Horizon:", est.Horizon)
		if h := calendar.ProblemHorizon(plan.Problem); h != est.Horizon {
			fmt.Fprintf(out, "  %-20s %15d\n", "With constraints:", h)
		}
		return nil
	},
}

func init() {
	estimateCmd.Flags().StringVarP(&estimateInput, "input", "i", "", "Plan file")
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "Print the estimate as JSON")
	_ = estimateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(estimateCmd)
}
