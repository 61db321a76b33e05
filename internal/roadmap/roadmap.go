// Package roadmap generates learning roadmaps and career suggestions with an
// LLM. Output is schema-constrained and checked again after decoding.
package roadmap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/skillpath/internal/catalog"
	"github.com/abhisek/skillpath/internal/llm"
)

// Step is one roadmap entry.
type Step struct {
	Name              string `json:"stepName"`
	RecommendedCourse string `json:"recommendedCourse"`
	Duration          string `json:"duration"`
	Points            int    `json:"points"`
}

// Roadmap is the plan for one role.
type Roadmap struct {
	Role  string `json:"role"`
	Steps []Step `json:"roadmap"`
}

// Prediction is the result of a career assessment.
type Prediction struct {
	SuggestedCareers []string `json:"suggestedCareers"`
	Reasoning        string   `json:"reasoning"`
}

// Service generates roadmaps and career predictions.
type Service interface {
	Roadmap(ctx context.Context, userSkills []string, role string, missing []string) (*Roadmap, error)
	PredictCareer(ctx context.Context, answers []string, aspirations string) (*Prediction, error)
}

// Config tunes generation.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the generation defaults.
func DefaultConfig() Config {
	return Config{MaxTokens: 4096, Temperature: 0.7}
}

// LLMService implements Service on an llm.Provider, normally a
// *llm.ChainProvider so a failing primary falls through to the fallback.
type LLMService struct {
	provider llm.Provider
	catalog  *catalog.Catalog
	config   Config
	logger   *slog.Logger
}

// New creates an LLMService. cat supplies the careers a prediction may name.
func New(provider llm.Provider, cat *catalog.Catalog, cfg Config, logger *slog.Logger) *LLMService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LLMService{provider: provider, catalog: cat, config: cfg, logger: logger}
}

const roadmapSystemPrompt = `You are a career coach and curriculum designer. You build short,
practical learning roadmaps. Every step names one concrete course or search
term suitable for a video platform, an honest duration estimate, and a point
value between 5 and 20 that grows with effort.`

// Roadmap generates at least one step per missing skill. Existing skills are
// listed so the plan can skip them.
func (s *LLMService) Roadmap(ctx context.Context, userSkills []string, role string, missing []string) (*Roadmap, error) {
	if strings.TrimSpace(role) == "" {
		return nil, &ValidationError{Field: "role", Reason: "must not be empty"}
	}
	if len(missing) == 0 {
		return nil, &ValidationError{Field: "missing skills", Reason: "nothing to learn for this role"}
	}
	ctx = llm.WithPurpose(ctx, "roadmap")

	existing := strings.Join(userSkills, ", ")
	if existing == "" {
		existing = "None specified"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Desired role: %s\n", role)
	fmt.Fprintf(&b, "Existing skills: %s\n", existing)
	fmt.Fprintf(&b, "Missing skills to learn: %s\n\n", strings.Join(missing, ", "))
	b.WriteString("Write a learning roadmap with at least one step for each missing skill. ")
	b.WriteString("Do not include steps for existing skills.")

	out, raw, err := llm.Decode[Roadmap](ctx, s.provider,
		llm.Prompt(roadmapSystemPrompt, b.String(), RoadmapSchema, s.config.MaxTokens, s.config.Temperature))
	if err != nil {
		return nil, fmt.Errorf("generate roadmap: %w", err)
	}
	if err := checkSteps(out.Steps); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: raw, Err: err}
	}
	out.Role = role
	s.logger.Debug("roadmap generated", "role", role, "steps", len(out.Steps))
	return &out, nil
}

func checkSteps(steps []Step) error {
	if len(steps) == 0 {
		return fmt.Errorf("roadmap has no steps")
	}
	for i, st := range steps {
		if strings.TrimSpace(st.Name) == "" {
			return fmt.Errorf("step %d has no name", i+1)
		}
		if st.Points < MinStepPoints || st.Points > MaxStepPoints {
			return fmt.Errorf("step %d points %d outside %d..%d", i+1, st.Points, MinStepPoints, MaxStepPoints)
		}
	}
	return nil
}

const careerSystemPrompt = `You are a career counselor and psychometric analyst. You read a
student's answers to a personality and interests questionnaire and suggest
careers only from the list you are given. Explain the suggestions in two or
three paragraphs that connect the answers to each career.`

// PredictCareer suggests careers from the catalog. Suggestions outside the
// catalog are dropped; if none remain the response is invalid.
func (s *LLMService) PredictCareer(ctx context.Context, answers []string, aspirations string) (*Prediction, error) {
	if len(answers) == 0 {
		return nil, &ValidationError{Field: "answers", Reason: "must not be empty"}
	}
	for i, a := range answers {
		if strings.TrimSpace(a) == "" {
			return nil, &ValidationError{Field: "answers", Reason: fmt.Sprintf("answer %d is blank", i+1)}
		}
	}
	if strings.TrimSpace(aspirations) == "" {
		aspirations = "None specified"
	}
	ctx = llm.WithPurpose(ctx, "career")

	var b strings.Builder
	fmt.Fprintf(&b, "Available careers: %s\n\n", strings.Join(s.catalog.RoleNames(), ", "))
	b.WriteString("Questionnaire answers:\n")
	for i, a := range answers {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a)
	}
	fmt.Fprintf(&b, "\nStated career aspirations: %s\n\n", aspirations)
	b.WriteString("Suggest 3 to 5 careers from the available list.")

	out, raw, err := llm.Decode[Prediction](ctx, s.provider,
		llm.Prompt(careerSystemPrompt, b.String(), PredictionSchema, s.config.MaxTokens, s.config.Temperature))
	if err != nil {
		return nil, fmt.Errorf("predict career: %w", err)
	}

	known := out.SuggestedCareers[:0]
	seen := make(map[string]bool)
	for _, c := range out.SuggestedCareers {
		r, ok := s.catalog.Lookup(c)
		if !ok {
			s.logger.Warn("dropping career outside catalog", "career", c)
			continue
		}
		if seen[r.Key] {
			continue
		}
		seen[r.Key] = true
		known = append(known, r.Name)
	}
	if len(known) == 0 {
		return nil, &llm.ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("no suggested career is in the catalog"),
		}
	}
	out.SuggestedCareers = known
	return &out, nil
}
