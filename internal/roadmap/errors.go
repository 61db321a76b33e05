package roadmap

import "fmt"

// ValidationError reports input that cannot be sent to the generator.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation marks ValidationError for quiz.IsValidation style checks.
func (e *ValidationError) IsValidation() bool { return true }
