package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/skillpath/internal/llm"
)

// Generator produces a test for a topic.
type Generator interface {
	Generate(ctx context.Context, topic string) (*Test, error)
}

// Config tunes LLM generation.
type Config struct {
	Questions   int
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the generation defaults.
func DefaultConfig() Config {
	return Config{
		Questions:   10,
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

const testSystemPrompt = `You write multiple-choice knowledge tests for people learning job skills.
Each question has one correct option. The correctAnswer field must repeat the
correct option text exactly. Avoid trick questions and keep wording plain.`

const feedbackSystemPrompt = `You review a learner's quiz attempt. Be encouraging and specific.
Name what they got right, and the concepts to review for the ones they missed.`

// LLMGenerator implements Generator and FeedbackWriter on an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// NewLLMGenerator creates an LLMGenerator.
func NewLLMGenerator(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// Generate asks the provider for a test and checks it can be served.
func (g *LLMGenerator) Generate(ctx context.Context, topic string) (*Test, error) {
	ctx = llm.WithPurpose(ctx, "quiz-gen")

	req := llm.Prompt(testSystemPrompt,
		fmt.Sprintf("Write a %d-question multiple-choice test on: %s", g.config.Questions, topic),
		TestSchema, g.config.MaxTokens, g.config.Temperature)

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate test: %w", err)
	}

	var t Test
	if err := json.Unmarshal(resp.Content, &t); err != nil {
		return nil, &MalformedTestError{Topic: topic, Reason: "unparseable response", Err: err}
	}
	if strings.TrimSpace(t.Topic) == "" {
		t.Topic = topic
	}
	if err := CheckTest(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CheckTest rejects tests that cannot be answered: no questions, a
// question with fewer than two options, or an answer key not among the
// options.
func CheckTest(t *Test) error {
	if len(t.Questions) == 0 {
		return &MalformedTestError{Topic: t.Topic, Reason: "zero questions"}
	}
	for i, q := range t.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return &MalformedTestError{Topic: t.Topic, Reason: fmt.Sprintf("question %d has no text", i+1)}
		}
		if len(q.Options) < 2 {
			return &MalformedTestError{Topic: t.Topic, Reason: fmt.Sprintf("question %d has %d options", i+1, len(q.Options))}
		}
		found := false
		for _, o := range q.Options {
			if strings.TrimSpace(o) == strings.TrimSpace(q.Correct) {
				found = true
				break
			}
		}
		if !found {
			return &MalformedTestError{Topic: t.Topic, Reason: fmt.Sprintf("question %d answer is not an option", i+1)}
		}
	}
	return nil
}

// WriteFeedback implements FeedbackWriter.
func (g *LLMGenerator) WriteFeedback(ctx context.Context, in FeedbackInput) (string, error) {
	ctx = llm.WithPurpose(ctx, "quiz-feedback")

	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\nScore: %d/%d\n\n", in.Topic, in.Score, in.Total)
	for i, q := range in.Questions {
		ans := ""
		if i < len(in.Answers) {
			ans = in.Answers[i]
		}
		fmt.Fprintf(&b, "Q%d: %s\n  learner: %s\n  correct: %s\n", i+1, q.Text, ans, q.Correct)
	}

	out, _, err := llm.Decode[struct {
		Feedback string `json:"feedback"`
	}](ctx, g.provider, llm.Prompt(feedbackSystemPrompt, b.String(), FeedbackSchema, 1024, g.config.Temperature))
	if err != nil {
		return "", fmt.Errorf("generate feedback: %w", err)
	}
	return out.Feedback, nil
}
