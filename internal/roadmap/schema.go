package roadmap

import "github.com/abhisek/skillpath/internal/llm"

// Point bounds for a single roadmap step.
const (
	MinStepPoints = 1
	MaxStepPoints = 100
)

// RoadmapSchema constrains generated roadmaps.
var RoadmapSchema = &llm.Schema{
	Name:        "learning-roadmap",
	Description: "A learning roadmap with at least one step per missing skill",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"roadmap": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"stepName": map[string]any{
							"type":        "string",
							"description": "Descriptive step name tied to one missing skill",
						},
						"recommendedCourse": map[string]any{
							"type":        "string",
							"description": "Course name or video search term",
						},
						"duration": map[string]any{
							"type":        "string",
							"description": "Estimated time, e.g. \"3 weeks\"",
						},
						"points": map[string]any{
							"type":    "integer",
							"minimum": MinStepPoints,
							"maximum": MaxStepPoints,
						},
					},
					"required":             []any{"stepName", "recommendedCourse", "duration", "points"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"roadmap"},
		"additionalProperties": false,
	},
}

// PredictionSchema constrains career predictions.
var PredictionSchema = &llm.Schema{
	Name:        "career-prediction",
	Description: "Careers suggested from a fixed list with reasoning",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"suggestedCareers": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string"},
			},
			"reasoning": map[string]any{
				"type": "string",
			},
		},
		"required":             []any{"suggestedCareers", "reasoning"},
		"additionalProperties": false,
	},
}
