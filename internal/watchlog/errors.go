package watchlog

import (
	"errors"
	"fmt"

	"watchlog/internal/tvmaze"
)

var (
	// ErrInvalidArgument reports a missing or malformed date or argument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidID reports a series identifier the catalog does not know.
	ErrInvalidID = tvmaze.ErrInvalidID
	// ErrNotFound reports a missing series or watch-log row.
	ErrNotFound = errors.New("not found")
	// ErrRollback is matched by every *RollbackError.
	ErrRollback = errors.New("transaction rolled back")
	// ErrIntegrity reports stored rows that break a relationship or invariant.
	ErrIntegrity = errors.New("data integrity violation")
)

// ErrorClassifier lets errors declare a kind for presentation.
type ErrorClassifier interface {
	ErrorKind() string
}

// RollbackError is returned when a multi-step operation failed and its
// transaction was rolled back. It unwraps to the failure that caused it.
type RollbackError struct {
	Op  string
	Err error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("%s: rolled back: %v", e.Op, e.Err)
}

func (e *RollbackError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRollback) hold for every RollbackError.
func (e *RollbackError) Is(target error) bool { return target == ErrRollback }

func (e *RollbackError) ErrorKind() string { return "rollback" }

// Kind classifies err as "validation", "not_found", "rollback", "integrity"
// or "" for anything else, such as storage or connectivity failures.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return "validation"
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrIntegrity):
		return "integrity"
	}
	return ""
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
