package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/syncbus"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear cached progress for the current profile",
	Long:  "Removes saved gaps, skill progress, final results, and pending awards for the profile. Points already in the ledger are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if !yes {
				return fmt.Errorf("this clears all progress for profile %q; pass --yes to confirm", e.cfg.Profile)
			}
			if err := e.cache.Clear(ctx); err != nil {
				return err
			}
			if err := e.bus.Publish(ctx, syncbus.ScopeAll); err != nil {
				e.logger.Warn("reset invalidation not persisted", "error", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Progress cleared for profile %q.\n", e.cfg.Profile)
			return nil
		})
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
