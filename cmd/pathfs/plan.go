package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pathfs/pkg/pathfs/plan"
)

func newPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Validate and execute tree plans",
		Long:  "Validate and execute YAML tree plans",
	}

	cmd.AddCommand(newPlanValidateCommand())
	cmd.AddCommand(newPlanExecuteCommand())

	return cmd
}

func newPlanValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [plan-file]",
		Short: "Validate a tree plan",
		Long:  "Validate the structure and dependencies of a tree plan and print its execution order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := plan.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse plan: %w", err)
			}
			if err := plan.Validate(m); err != nil {
				return fmt.Errorf("plan validation failed: %w", err)
			}
			steps, err := plan.Order(m)
			if err != nil {
				return fmt.Errorf("plan validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Plan file is valid\n")
			fmt.Fprintf(out, "Description: %s\n", m.Description)
			fmt.Fprintf(out, "Steps: %d\n", len(steps))
			for i, step := range steps {
				fmt.Fprintf(out, "  %d. %s: %s (%s)\n", i+1, step.ID, step.Subject(), step.Op)
				if len(step.After) > 0 {
					fmt.Fprintf(out, "     After: %v\n", step.After)
				}
			}
			return nil
		},
	}
}

func newPlanExecuteCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "execute [plan-file]",
		Short: "Execute a tree plan",
		Long: `Execute the steps of a tree plan in dependency order. Execution stops at the
first failing step; steps already applied are left in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := plan.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse plan: %w", err)
			}

			report, runErr := plan.NewExecutor(fsys, plan.WithDryRun(dryRun)).Run(cmd.Context(), m)
			if report == nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "DRY RUN: Plan '%s' execution summary:\n", report.Description)
			} else {
				fmt.Fprintf(out, "Plan '%s' execution summary:\n", report.Description)
			}
			for _, res := range report.Results {
				status := "✓"
				switch res.Status {
				case plan.StatusFailed:
					status = "✗"
				case plan.StatusPending, plan.StatusSkipped:
					status = "-"
				}
				fmt.Fprintf(out, "  %s %s (%s) - %v\n", status, res.Step.ID, res.Status, res.Duration)
				if res.Err != nil {
					fmt.Fprintf(out, "    Error: %v\n", res.Err)
				}
			}

			if runErr != nil {
				fmt.Fprintf(out, "\n✗ Plan execution failed\n")
				return runErr
			}
			fmt.Fprintf(out, "\n✓ Plan executed successfully\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Order and list the steps without applying them")

	return cmd
}
