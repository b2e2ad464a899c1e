package certificate

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("certificate request not found")
	ErrIllegalTransition = errors.New("request is no longer in a state that allows this action")
	ErrConflict          = errors.New("this request was already updated by someone else")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("not allowed to act on this request")
	ErrStore             = errors.New("storage failure")
)

// ValidationError reports a failed input precondition on one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + " " + e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// TransitionError carries the rejected (status, role, action) combination.
type TransitionError struct {
	From   Status
	Role   string
	Action string
}

func (e *TransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("illegal transition: %s cannot %s", e.Role, e.Action)
	}
	return fmt.Sprintf("illegal transition: %s cannot %s a %s request", e.Role, e.Action, e.From)
}

func (e *TransitionError) Is(target error) bool { return target == ErrIllegalTransition }

// ConflictError is returned when a write lost a race: the stored status no
// longer matches what the writer expected.
type ConflictError struct {
	RequestID string
	Expected  Status
	Actual    Status
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: expected %s, found %s", e.RequestID, e.Expected, e.Actual)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// StoreError wraps infrastructure failures unrelated to business rules.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

// WrapStore leaves business errors untouched and wraps anything else as *StoreError.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrNotFound, ErrIllegalTransition, ErrConflict, ErrValidation, ErrForbidden, ErrStore} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &StoreError{Op: op, Err: err}
}
