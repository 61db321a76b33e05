package quiz

import "github.com/abhisek/skillpath/internal/llm"

// TestSchema constrains generated tests.
var TestSchema = &llm.Schema{
	Name:        "knowledge-test",
	Description: "A multiple-choice knowledge test on one topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic": map[string]any{
				"type":        "string",
				"description": "The topic the test covers",
			},
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"questionText": map[string]any{
							"type":        "string",
							"description": "The question shown to the learner",
						},
						"options": map[string]any{
							"type":        "array",
							"minItems":    2,
							"items":       map[string]any{"type": "string"},
							"description": "Answer options, usually four",
						},
						"correctAnswer": map[string]any{
							"type":        "string",
							"description": "The exact text of the correct option",
						},
					},
					"required":             []any{"questionText", "options", "correctAnswer"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"topic", "questions"},
		"additionalProperties": false,
	},
}

// FeedbackSchema constrains feedback text.
var FeedbackSchema = &llm.Schema{
	Name:        "test-feedback",
	Description: "Short qualitative feedback on a quiz attempt",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"feedback": map[string]any{
				"type":        "string",
				"description": "Two to four sentences: what went well, what to review next",
			},
		},
		"required":             []any{"feedback"},
		"additionalProperties": false,
	},
}
