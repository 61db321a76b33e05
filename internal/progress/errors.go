package progress

import (
	"errors"
	"fmt"
)

var (
	// ErrSkillNotInGap is returned when a skill is not part of the role's
	// current gap. Nothing is written.
	ErrSkillNotInGap = errors.New("skill is not in the role's current gap")

	// ErrGateLocked is returned when a passing final result is recorded
	// before every gap skill has a passed quiz.
	ErrGateLocked = errors.New("final test is locked")

	// ErrUnknownRole is returned when a gap is saved for a role the
	// catalog does not know.
	ErrUnknownRole = errors.New("unknown role")
)

// ValidationError reports malformed input. Nothing is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation marks the error as a validation failure.
func (e *ValidationError) IsValidation() bool { return true }

// IsNotFound marks ErrSkillNotInGap style errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSkillNotInGap) || errors.Is(err, ErrUnknownRole)
}
