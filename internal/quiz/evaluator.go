package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// FallbackFeedback replaces AI feedback when the writer is unavailable.
const FallbackFeedback = "Feedback is unavailable right now. Your score has been recorded."

// FeedbackInput is what a FeedbackWriter conditions its text on.
type FeedbackInput struct {
	Topic     string
	Questions []Question
	Answers   []string
	Score     int
	Total     int
}

// FeedbackWriter produces qualitative feedback for a scored attempt.
type FeedbackWriter interface {
	WriteFeedback(ctx context.Context, in FeedbackInput) (string, error)
}

// Evaluator scores submissions and attaches feedback.
type Evaluator struct {
	feedback FeedbackWriter
	logger   *slog.Logger
}

// NewEvaluator creates an Evaluator. A nil writer yields fallback feedback
// on every attempt; a nil logger discards logs.
func NewEvaluator(fw FeedbackWriter, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Evaluator{feedback: fw, logger: logger}
}

// Score counts answers equal to the answer key after trimming surrounding
// whitespace. It fails with *ValidationError when the test is empty, the
// lengths differ, or an answer is blank.
func Score(questions []Question, answers []string) (score, total int, err error) {
	if len(questions) == 0 {
		return 0, 0, &ValidationError{Field: "questions", Reason: "test has no questions"}
	}
	if len(answers) != len(questions) {
		return 0, 0, &ValidationError{
			Field:  "answers",
			Reason: fmt.Sprintf("got %d answers for %d questions", len(answers), len(questions)),
		}
	}
	for i, a := range answers {
		a = strings.TrimSpace(a)
		if a == "" {
			return 0, 0, &ValidationError{Field: "answers", Reason: fmt.Sprintf("question %d is unanswered", i+1)}
		}
		if a == strings.TrimSpace(questions[i].Correct) {
			score++
		}
	}
	return score, len(questions), nil
}

// Evaluate scores the submission and asks the feedback writer for text.
// A feedback failure never blocks scoring: the result carries the score
// with FallbackFeedback and FeedbackDegraded set.
func (e *Evaluator) Evaluate(ctx context.Context, test *Test, answers []string) (Result, error) {
	if test == nil {
		return Result{}, &ValidationError{Field: "test", Reason: "missing"}
	}
	score, total, err := Score(test.Questions, answers)
	if err != nil {
		return Result{}, err
	}

	res := Result{Score: score, Total: total, Passed: Passed(score, total)}

	if e.feedback == nil {
		res.Feedback = FallbackFeedback
		res.FeedbackDegraded = true
		return res, nil
	}

	text, err := e.feedback.WriteFeedback(ctx, FeedbackInput{
		Topic:     test.Topic,
		Questions: test.Questions,
		Answers:   answers,
		Score:     score,
		Total:     total,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		e.logger.Warn("quiz feedback unavailable",
			"topic", test.Topic,
			"score", score,
			"total", total,
			"error", err,
		)
		res.Feedback = FallbackFeedback
		res.FeedbackDegraded = true
		return res, nil
	}

	res.Feedback = text
	return res, nil
}
