package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced identifier does not exist in its
// expected mapping. The graph is left unchanged.
var ErrNotFound = errors.New("not found")

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// ValidationError reports a rejected user input. It carries the field label
// and a human-readable reason; no mutation and no history entry happen when
// one of these is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CorruptError reports a persisted shape that failed the validity check.
// It is always recoverable: the loader discards the data and reseeds.
type CorruptError struct {
	Reason string
}

func (e *CorruptError) Error() string {
	return "corrupt persisted state: " + e.Reason
}
