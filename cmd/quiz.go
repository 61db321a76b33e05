package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/ledger"
	"github.com/abhisek/skillpath/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take the quiz for a gap skill",
	Long: "Generates a quiz for the skill, prints it, and reads one answer per line from stdin. " +
		"An answer is either the option letter or the option text.",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := roleFlag(cmd)
		if err != nil {
			return err
		}
		skill, _ := cmd.Flags().GetString("skill")

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			eng, err := e.engine(ctx, true)
			if err != nil {
				return err
			}
			test, ok, err := eng.GenerateSkillQuiz(ctx, role, skill)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("quiz generation was superseded")
			}

			answers, err := askQuestions(cmd.OutOrStdout(), cmd.InOrStdin(), test)
			if err != nil {
				return err
			}
			out, err := eng.SubmitSkillQuiz(ctx, role, skill, test, answers)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printResult(w, out.Result)
			if out.NewlyPassed {
				fmt.Fprintf(w, "Skill mastered: %s\n", out.Progress.Skill)
			}
			printAward(w, out.Receipt, out.AwardErr)
			fmt.Fprintf(w, "Role state: %s\n", out.State.Label())
			return nil
		})
	},
}

var finalCmd = &cobra.Command{
	Use:   "final",
	Short: "Take the final mastery test for a role",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := roleFlag(cmd)
		if err != nil {
			return err
		}
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			eng, err := e.engine(ctx, true)
			if err != nil {
				return err
			}
			test, ok, err := eng.GenerateFinalQuiz(ctx, role)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("final test generation was superseded")
			}

			answers, err := askQuestions(cmd.OutOrStdout(), cmd.InOrStdin(), test)
			if err != nil {
				return err
			}
			out, err := eng.SubmitFinalTest(ctx, role, test, answers)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printResult(w, out.Result)
			printAward(w, out.Receipt, out.AwardErr)
			fmt.Fprintf(w, "Role state: %s\n", out.State.Label())
			return nil
		})
	},
}

func init() {
	quizCmd.Flags().StringP("role", "r", "", "Target role")
	quizCmd.Flags().StringP("skill", "s", "", "Gap skill")
	_ = quizCmd.MarkFlagRequired("skill")

	finalCmd.Flags().StringP("role", "r", "", "Target role")
}

// askQuestions prints each question and reads one answer line for it.
func askQuestions(w io.Writer, r io.Reader, test *quiz.Test) ([]string, error) {
	fmt.Fprintf(w, "%s\n\n", test.Topic)
	sc := bufio.NewScanner(r)
	answers := make([]string, 0, len(test.Questions))
	for i, q := range test.Questions {
		fmt.Fprintf(w, "%d. %s\n", i+1, q.Text)
		for j, opt := range q.Options {
			fmt.Fprintf(w, "   %c) %s\n", 'a'+j, opt)
		}
		fmt.Fprint(w, "> ")
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, fmt.Errorf("read answer: %w", err)
			}
			return nil, fmt.Errorf("input ended after %d of %d answers", i, len(test.Questions))
		}
		answers = append(answers, resolveAnswer(q, sc.Text()))
		fmt.Fprintln(w)
	}
	return answers, nil
}

// resolveAnswer maps a single option letter to its option text. Anything
// else is taken as the answer text itself.
func resolveAnswer(q quiz.Question, in string) string {
	in = strings.TrimSpace(in)
	if len(in) == 1 {
		idx := int(strings.ToLower(in)[0] - 'a')
		if idx >= 0 && idx < len(q.Options) {
			return q.Options[idx]
		}
	}
	return in
}

func printResult(w io.Writer, r quiz.Result) {
	verdict := "Not passed"
	if r.Passed {
		verdict = "Passed"
	}
	fmt.Fprintf(w, "%s: %d/%d (%d%%)\n\n%s\n\n", verdict, r.Score, r.Total, r.Percent(), r.Feedback)
}

func printAward(w io.Writer, rc *ledger.Receipt, awardErr error) {
	if rc != nil {
		fmt.Fprintf(w, "+%d points (%s). Total: %d\n", rc.Points, rc.Reason, rc.Total)
	}
	if awardErr != nil {
		fmt.Fprintf(w, "Points earned but not yet confirmed (%v). They will be applied by `skillpath points retry`.\n", awardErr)
	}
}
