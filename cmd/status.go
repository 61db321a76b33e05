package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/engine"
	"github.com/abhisek/skillpath/internal/mastery"
	"github.com/abhisek/skillpath/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gap progress, gate state, and points for a role",
	Long:  "Without --role, shows every role that has a saved gap.",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		events, _ := cmd.Flags().GetInt("events")
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			eng, err := e.engine(ctx, false)
			if err != nil {
				return err
			}
			roles := []string{role}
			if strings.TrimSpace(role) == "" {
				if roles, err = e.progress.Roles(ctx); err != nil {
					return err
				}
				if len(roles) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No roles tracked yet. Start with `skillpath gap --role <role>`.")
					return nil
				}
			}
			for i, r := range roles {
				st, err := eng.Status(ctx, r)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				printStatus(cmd.OutOrStdout(), st)
				if events > 0 {
					if err := printTransitions(ctx, cmd.OutOrStdout(), e, st.RoleKey, events); err != nil {
						return err
					}
				}
			}
			return nil
		})
	},
}

func init() {
	statusCmd.Flags().StringP("role", "r", "", "Target role")
	statusCmd.Flags().Int("events", 0, "Also show the last N state transitions")
}

func printTransitions(ctx context.Context, w io.Writer, e *env, roleKey string, limit int) error {
	evs, err := e.store.EventRepo().MasteryEvents(ctx, e.cfg.Profile, roleKey, store.QueryOpts{Limit: limit})
	if err != nil {
		return err
	}
	for _, ev := range evs {
		subject := "role"
		if ev.SkillKey != "" {
			subject = ev.SkillKey
		}
		line := fmt.Sprintf("  %s  %-20s %s -> %s (%s)",
			ev.Timestamp.Local().Format("2006-01-02 15:04"), subject, ev.FromState, ev.ToState, ev.Trigger)
		if ev.Total > 0 {
			line += fmt.Sprintf(" %d/%d", ev.Score, ev.Total)
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func printStatus(w io.Writer, st engine.Status) {
	fmt.Fprintf(w, "%s %s: %s\n", st.State.Icon(), st.Role, st.State.Label())
	if !st.HasGap {
		fmt.Fprintln(w, "  no gap saved")
		return
	}
	fmt.Fprintf(w, "  %d of %d skills passed\n", st.Passed, len(st.Skills))
	for _, s := range st.Skills {
		mark := " "
		if s.State == mastery.SkillMastered {
			mark = "✓"
		}
		line := fmt.Sprintf("  [%s] %s  %d steps", mark, s.Name, len(s.Progress.CompletedSteps))
		if s.Progress.BestTotal > 0 {
			line += fmt.Sprintf("  best %d/%d", s.Progress.BestScore, s.Progress.BestTotal)
		}
		fmt.Fprintln(w, line)
	}
	if st.Final != nil {
		fmt.Fprintf(w, "  final: %d/%d after %d attempt(s), passed=%v\n", st.Final.Score, st.Final.Total, st.Final.Attempts, st.Final.Passed)
	}

	if st.PointsErr != nil {
		fmt.Fprintf(w, "  points: unavailable (%v)\n", st.PointsErr)
	} else {
		fmt.Fprintf(w, "  points: %d\n", st.Points)
	}
	if len(st.Pending) > 0 {
		fmt.Fprintf(w, "  %d award(s) pending\n", len(st.Pending))
	}
}
