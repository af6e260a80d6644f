package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInconsistentAllocation indicates a payment split that violates an
	// exact-match requirement against the amount due.
	ErrInconsistentAllocation = errors.New("payment allocation does not settle the amount due")
	// ErrStaleRecompute indicates a balance recompute requested against an
	// out-of-order entry snapshot.
	ErrStaleRecompute = errors.New("ledger recompute requested against a stale snapshot")
)

// InvalidInputError reports a numeric field outside its valid range.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// NewInvalidInput builds an InvalidInputError for the named field.
func NewInvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// IsInvalidInput reports whether err is an InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}
