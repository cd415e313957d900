package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/staffplan/internal/storage"
)

var (
	verifyInput    string
	verifySchedule string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that a saved schedule still satisfies its plan",
	Long: `Re-check a schedule written by 'staffplan solve -o' against a plan file.

Every start day and assignment of the schedule is pinned and the plan's
constraints are solved again. Use it after editing either file by hand.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Planner == nil {
			return fmt.Errorf("planner not initialized")
		}

		plan, err := storage.LoadPlan(verifyInput)
		if err != nil {
			return err
		}
		sched, err := storage.LoadSchedule(verifySchedule)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if sched.PlanDigest != "" && sched.PlanDigest != plan.Digest {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s was produced from a different version of %s\n", verifySchedule, verifyInput)
		}

		stored, err := sched.Solution(plan)
		if err != nil {
			return fmt.Errorf("reading schedule %s: %w", verifySchedule, err)
		}

		checked, err := Planner.Verify(plan.Problem, stored)
		if err != nil {
			return fmt.Errorf("verifying schedule: %w", err)
		}
		if !checked.Found() {
			return fmt.Errorf("schedule %s violates plan %s (%s)", verifySchedule, verifyInput, checked.Status)
		}

		fmt.Fprintf(out, "Schedule %s is valid: %d days, cost %d, %d resources\n",
			verifySchedule, checked.Duration, checked.Cost, checked.Resources)
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyInput, "input", "i", "", "Plan file")
	verifyCmd.Flags().StringVarP(&verifySchedule, "schedule", "s", "", "Schedule file to check")
	_ = verifyCmd.MarkFlagRequired("input")
	_ = verifyCmd.MarkFlagRequired("schedule")
	rootCmd.AddCommand(verifyCmd)
}
