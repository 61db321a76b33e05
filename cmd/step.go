package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Mark a learning step as completed for a gap skill",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := roleFlag(cmd)
		if err != nil {
			return err
		}
		skill, _ := cmd.Flags().GetString("skill")
		step, _ := cmd.Flags().GetString("step")

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			eng, err := e.engine(ctx, false)
			if err != nil {
				return err
			}
			p, changed, err := eng.CompleteStep(ctx, role, skill, step)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "%q was already completed for %s.\n", step, p.Skill)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed %q for %s (%d steps done).\n", step, p.Skill, len(p.CompletedSteps))
			return nil
		})
	},
}

func init() {
	stepCmd.Flags().StringP("role", "r", "", "Target role")
	stepCmd.Flags().StringP("skill", "s", "", "Gap skill")
	stepCmd.Flags().String("step", "", "Step name")
	_ = stepCmd.MarkFlagRequired("skill")
	_ = stepCmd.MarkFlagRequired("step")
}
