package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/abhisek/skillpath/internal/llm"
	"github.com/abhisek/skillpath/internal/quiz"
	"github.com/abhisek/skillpath/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skillpath",
	Short: "Skill gap tracking with quiz-gated mastery and points",
	Long: "SkillPath compares your skills against a target role, tracks learning steps and quizzes " +
		"for each missing skill, gates a final mastery test, and awards points for what you master.",
	SilenceUsage: true,
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	if llm.IsUpstream(err) || errors.As(err, new(*quiz.MalformedTestError)) {
		fmt.Fprintln(os.Stderr, upstreamHint)
	}
	return err
}

const upstreamHint = "The model service failed; no progress or points were recorded. " +
	"Try again later, or set llm.fallback in the config."

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/skillpath/config.toml)")
	pf.String("db", "", "Path to SQLite database file (overrides SKILLPATH_DB env var)")
	pf.String("profile", "", "Cache profile")
	pf.String("user", "", "User id that earns points")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: auto, text, json")

	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(gapCmd)
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(careerCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(finalCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(pointsCmd)
	rootCmd.AddCommand(signinCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db or the config value,
// then the default XDG path.
func resolveDBPath(configured string) (string, error) {
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
