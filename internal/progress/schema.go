package progress

import "github.com/abhisek/skillpath/internal/cache"

// Record types persisted in the cache. Bump the minor version for additive
// changes and the major version for incompatible ones; a major bump makes
// old records read as absent.

var skillProgressSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"skill":          map[string]any{"type": "string"},
		"completedSteps": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "uniqueItems": true},
		"quizPassed":     map[string]any{"type": "boolean"},
		"bestScore":      map[string]any{"type": "integer", "minimum": 0},
		"bestTotal":      map[string]any{"type": "integer", "minimum": 0},
	},
	"required": []any{"completedSteps", "quizPassed", "bestScore"},
}

// RoleProgressType is the per-role progress record.
var RoleProgressType = cache.RecordType{
	Kind:    "progress",
	Version: "v1.0.0",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"role": map[string]any{"type": "string"},
			"skills": map[string]any{
				"type":                 "object",
				"additionalProperties": skillProgressSchema,
			},
		},
		"required": []any{"role", "skills"},
	},
}

// FinalType is the per-role final mastery record.
var FinalType = cache.RecordType{
	Kind:    "final",
	Version: "v1.0.0",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"passed":     map[string]any{"type": "boolean"},
			"score":      map[string]any{"type": "integer", "minimum": 0},
			"total":      map[string]any{"type": "integer", "minimum": 0},
			"feedback":   map[string]any{"type": "string"},
			"attempts":   map[string]any{"type": "integer", "minimum": 0},
			"recordedAt": map[string]any{"type": "string"},
		},
		"required": []any{"passed", "score", "total"},
	},
}

// GapType is the current skill gap of a role.
var GapType = cache.RecordType{
	Kind:    "gap",
	Version: "v1.0.0",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"desiredRole":   map[string]any{"type": "string"},
			"roleKey":       map[string]any{"type": "string", "minLength": 1},
			"userSkills":    map[string]any{"type": []any{"array", "null"}, "items": map[string]any{"type": "string"}},
			"missingSkills": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []any{"desiredRole", "roleKey", "missingSkills"},
	},
}

func progressKey(roleKey string) string { return "progress/" + roleKey }
func finalKey(roleKey string) string    { return "final/" + roleKey }
func gapKey(roleKey string) string      { return "gap/" + roleKey }
