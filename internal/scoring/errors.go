package scoring

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidRating      = errors.New("rating must be an integer between 0 and 4")
	ErrUnknownQuestion    = errors.New("question is not in the active catalog")
	ErrDuplicateQuestion  = errors.New("question answered more than once")
	ErrEmptySubmission    = errors.New("at least one question must be rated")
	ErrInvalidReviewType  = errors.New("unknown review type")
	ErrPersistenceFailure = errors.New("failed to persist review")
)

// ValidationError names the offending request field. It unwraps to one of
// the sentinel errors above so callers can use errors.Is.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Err: err}
}
