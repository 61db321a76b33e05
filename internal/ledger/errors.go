package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound is returned when the account does not exist. The
	// award is not applied and is never silently dropped.
	ErrUserNotFound = errors.New("ledger: user not found")

	// ErrDuplicateAward is returned when the idempotency key was already
	// applied. The total is unchanged; callers treat this as success.
	ErrDuplicateAward = errors.New("ledger: award already applied")
)

// InvalidAwardError rejects an award before anything is applied.
type InvalidAwardError struct {
	Field  string
	Reason string
}

func (e *InvalidAwardError) Error() string {
	return fmt.Sprintf("invalid award %s: %s", e.Field, e.Reason)
}

// IsValidation marks the error as a validation failure.
func (e *InvalidAwardError) IsValidation() bool { return true }

// UnavailableError wraps a transport or database failure. The ledger does
// not retry; whether and when to retry is the caller's decision.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("ledger unavailable (%s): %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// IsUnavailable reports whether err is a LedgerUnavailable failure.
func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}
