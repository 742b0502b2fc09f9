package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by lifecycle operations. Every failure matches exactly
// one of them through errors.Is.
var (
	// ErrNotFound indicates a referenced engagement, request, session or task does not exist
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed input
	ErrValidation = errors.New("validation error")

	// ErrInvalidTransition indicates the current state does not permit the operation
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrPreconditionFailed indicates a guarded transition whose precondition does not hold
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrConflict indicates the stored entity changed since it was read
	ErrConflict = errors.New("concurrent update")
)

// NotFoundError creates a not found error with context
func NotFoundError(resource, id string) error {
	return fmt.Errorf("%s %q %w", resource, id, ErrNotFound)
}

// ValidationError creates a validation error for a single field
func ValidationError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrValidation)
}

// InvalidTransitionError creates an invalid transition error naming the
// entity, its current status and the rejected operation
func InvalidTransitionError(entity, status, operation string) error {
	return fmt.Errorf("%w: cannot %s %s in status '%s'", ErrInvalidTransition, operation, entity, status)
}

// ConflictError reports a stale write of the given entity
func ConflictError(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrConflict)
}

// PreconditionError carries every unmet condition of a guarded transition.
type PreconditionError struct {
	Operation  string
	Conditions []string
}

// NewPreconditionError creates a precondition error for the given operation
func NewPreconditionError(operation string, conditions ...string) *PreconditionError {
	return &PreconditionError{
		Operation:  operation,
		Conditions: conditions,
	}
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrPreconditionFailed, e.Operation, strings.Join(e.Conditions, ", "))
}

// Is matches ErrPreconditionFailed
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPreconditionFailed
}

// UnmetConditions extracts the unmet conditions from err, if it is a precondition failure
func UnmetConditions(err error) []string {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Conditions
	}
	return nil
}

// Kind returns the name of the error kind, or "internal" for anything else
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrPreconditionFailed):
		return "precondition_failed"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
