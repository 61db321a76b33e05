package quiz

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed submission. Nothing is recorded when
// it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation is implemented by every validation error in the engine so
// callers can classify without knowing the concrete type.
func (e *ValidationError) IsValidation() bool { return true }

// IsValidation reports whether err is, or wraps, a validation error.
func IsValidation(err error) bool {
	var v interface{ IsValidation() bool }
	return errors.As(err, &v) && v.IsValidation()
}

// MalformedTestError reports a generated test that cannot be served, such
// as one with zero questions. It is an upstream failure, never an empty
// quiz that passes trivially.
type MalformedTestError struct {
	Topic  string
	Reason string
	Err    error
}

func (e *MalformedTestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed test for %q: %s: %v", e.Topic, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed test for %q: %s", e.Topic, e.Reason)
}

func (e *MalformedTestError) Unwrap() error { return e.Err }
