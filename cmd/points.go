package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/ledger"
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Show your points total",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			eng, err := e.engine(ctx, false)
			if err != nil {
				return err
			}
			total, err := e.ledger.Total(ctx, eng.UserID())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d points\n", total)

			pending, err := eng.PendingAwards(ctx)
			if err != nil {
				return err
			}
			for _, p := range pending {
				fmt.Fprintf(cmd.OutOrStdout(), "  pending: +%d %s (%d attempts, last error: %s)\n",
					p.Points, p.Reason, p.Attempts, p.LastError)
			}
			return nil
		})
	},
}

var pointsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List accepted awards, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.cfg.RequireUser(); err != nil {
				return err
			}
			events, err := e.ledger.History(ctx, e.cfg.UserID, limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No awards yet.")
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-6s  %-19s  %6s  %s\n", "Seq", "Time", "Points", "Reason")
			fmt.Fprintln(out, strings.Repeat("─", 72))
			for _, ev := range events {
				fmt.Fprintf(out, "%-6d  %-19s  %+6d  %s\n",
					ev.Sequence,
					ev.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					ev.Points,
					ev.Reason,
				)
			}
			return nil
		})
	},
}

var pointsRewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "Show reward eligibility",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.cfg.RequireUser(); err != nil {
				return err
			}
			total, err := e.ledger.Total(ctx, e.cfg.UserID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d points\n\n", total)
			for _, r := range ledger.RewardsFor(total) {
				state := fmt.Sprintf("%d more needed", r.Needed)
				if r.Eligible {
					state = "eligible"
				}
				fmt.Fprintf(out, "  %-32s  %5d pts  %s\n", r.Name, r.Points, state)
			}
			return nil
		})
	},
}

var pointsRetryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Apply awards that were earned but not confirmed by the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			eng, err := e.engine(ctx, false)
			if err != nil {
				return err
			}
			rep, err := eng.RetryPendingAwards(ctx)
			out := cmd.OutOrStdout()
			for _, rc := range rep.Applied {
				fmt.Fprintf(out, "+%d points (%s). Total: %d\n", rc.Points, rc.Reason, rc.Total)
			}
			if rep.Duplicates > 0 {
				fmt.Fprintf(out, "%d award(s) had already been applied.\n", rep.Duplicates)
			}
			if rep.Remaining > 0 {
				fmt.Fprintf(out, "%d award(s) still pending.\n", rep.Remaining)
			}
			if len(rep.Applied) == 0 && rep.Duplicates == 0 && rep.Remaining == 0 {
				fmt.Fprintln(out, "Nothing pending.")
			}
			return err
		})
	},
}

func init() {
	pointsHistoryCmd.Flags().IntP("limit", "n", 20, "Number of awards to show")

	pointsCmd.AddCommand(pointsHistoryCmd)
	pointsCmd.AddCommand(pointsRewardsCmd)
	pointsCmd.AddCommand(pointsRetryCmd)
}
