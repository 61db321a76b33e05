package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var gapCmd = &cobra.Command{
	Use:   "gap",
	Short: "Compute and save the skill gap for a target role",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		skills, _ := cmd.Flags().GetStringSlice("skills")

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			eng, err := e.engine(ctx, false)
			if err != nil {
				return err
			}
			rec, err := eng.Analyze(ctx, skills, role)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !rec.Known() {
				fmt.Fprintf(out, "Role %q is not in the catalog. Run `skillpath roles` to see the options.\n", role)
				return nil
			}
			if len(rec.MissingSkills) == 0 {
				fmt.Fprintf(out, "You already have every skill %s needs.\n", rec.DesiredRole)
				return nil
			}
			fmt.Fprintf(out, "%s: %d skills to learn\n", rec.DesiredRole, len(rec.MissingSkills))
			for _, s := range rec.MissingSkills {
				fmt.Fprintf(out, "  - %s\n", s)
			}
			return nil
		})
	},
}

func init() {
	gapCmd.Flags().StringP("role", "r", "", "Target role")
	gapCmd.Flags().StringSliceP("skills", "s", nil, "Skills you already have (comma separated)")
	_ = gapCmd.MarkFlagRequired("role")
}

// roleFlag reads the required --role flag.
func roleFlag(cmd *cobra.Command) (string, error) {
	role, _ := cmd.Flags().GetString("role")
	if strings.TrimSpace(role) == "" {
		return "", fmt.Errorf("--role is required")
	}
	return role, nil
}
