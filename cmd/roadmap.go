package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/roadmap"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Generate a learning roadmap for the saved gap of a role",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := roleFlag(cmd)
		if err != nil {
			return err
		}
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			gap, found, err := e.progress.Gap(ctx, role)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no gap saved for %q: run `skillpath gap --role %q` first", role, role)
			}
			if len(gap.MissingSkills) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to learn for %s.\n", gap.DesiredRole)
				return nil
			}

			p, err := e.provider(ctx)
			if err != nil {
				return err
			}
			svc := roadmap.New(p, e.catalog, roadmap.DefaultConfig(), e.logger)
			rm, err := svc.Roadmap(ctx, gap.UserSkills, gap.DesiredRole, gap.MissingSkills)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Roadmap for %s\n\n", rm.Role)
			for i, s := range rm.Steps {
				fmt.Fprintf(out, "%2d. %s  (%s, %d pts)\n", i+1, s.Name, s.Duration, s.Points)
				fmt.Fprintf(out, "    %s\n", s.RecommendedCourse)
			}
			return nil
		})
	},
}

var careerCmd = &cobra.Command{
	Use:   "career",
	Short: "Suggest careers from assessment answers",
	Long:  "Reads one answer per line from --answers-file (or stdin when it is \"-\") and suggests catalog roles.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("answers-file")
		aspirations, _ := cmd.Flags().GetString("aspirations")

		answers, err := readAnswers(cmd, path)
		if err != nil {
			return err
		}
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			p, err := e.provider(ctx)
			if err != nil {
				return err
			}
			svc := roadmap.New(p, e.catalog, roadmap.DefaultConfig(), e.logger)
			pred, err := svc.PredictCareer(ctx, answers, aspirations)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Suggested careers:")
			for _, c := range pred.SuggestedCareers {
				fmt.Fprintf(out, "  - %s\n", c)
			}
			if pred.Reasoning != "" {
				fmt.Fprintf(out, "\n%s\n", pred.Reasoning)
			}
			return nil
		})
	},
}

func init() {
	roadmapCmd.Flags().StringP("role", "r", "", "Target role")

	careerCmd.Flags().StringP("answers-file", "f", "-", "File with one answer per line (\"-\" for stdin)")
	careerCmd.Flags().StringP("aspirations", "a", "", "Free-text career aspirations")
}

// readAnswers reads non-empty lines from path, or from the command's input
// when path is "-".
func readAnswers(cmd *cobra.Command, path string) ([]string, error) {
	in := cmd.InOrStdin()
	if path != "-" && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open answers: %w", err)
		}
		defer f.Close()
		in = f
	}

	var answers []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			answers = append(answers, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	return answers, nil
}
