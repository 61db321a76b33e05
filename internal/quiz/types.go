// Package quiz generates multiple-choice tests and scores submissions
// against the pass threshold.
package quiz

import (
	"fmt"
	"strings"
)

// Question is one multiple-choice item with its answer key.
type Question struct {
	Text    string   `json:"questionText"`
	Options []string `json:"options"`
	Correct string   `json:"correctAnswer"`
}

// Test is a generated quiz on one topic.
type Test struct {
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
}

// Result is the outcome of scoring a submission.
type Result struct {
	Score  int
	Total  int
	Passed bool

	// Feedback is qualitative text about the attempt. When the feedback
	// writer fails it holds FallbackFeedback and FeedbackDegraded is set.
	Feedback         string
	FeedbackDegraded bool
}

// Percent returns the score as a whole percentage.
func (r Result) Percent() int {
	if r.Total == 0 {
		return 0
	}
	return r.Score * 100 / r.Total
}

// Passed reports whether score/total meets the 80% threshold. Integer
// arithmetic keeps 8/10 exactly on the line.
func Passed(score, total int) bool {
	if total <= 0 {
		return false
	}
	return 5*score >= 4*total
}

// FinalTopic builds the topic string for a role's final mastery test.
func FinalTopic(role string, skills []string) string {
	return fmt.Sprintf("Final Mastery Test for %s covering: %s", role, strings.Join(skills, ", "))
}
