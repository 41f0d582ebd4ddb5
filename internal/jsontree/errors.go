package jsontree

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeConflict is wrapped by TypeConflictError.
	ErrTypeConflict = errors.New("path type conflict")
	// ErrRawValue is wrapped by RawValueError.
	ErrRawValue = errors.New("invalid raw JSON value")
	// ErrIndexTooLarge is returned when an array index exceeds the builder's limit.
	ErrIndexTooLarge = errors.New("array index too large")
)

// TypeConflictError reports an accessor applied to a node of the wrong type,
// such as an object key against an array.
type TypeConflictError struct {
	Path     string
	Expected Kind
	Found    Kind
}

func (e *TypeConflictError) Error() string {
	return fmt.Sprintf("%s at %s: expected %s, found %s", ErrTypeConflict, e.Path, e.Expected, e.Found)
}

func (e *TypeConflictError) Unwrap() error {
	return ErrTypeConflict
}

// RawValueError reports a ":=" value that is not valid JSON.
type RawValueError struct {
	Path  string
	Value string
	Err   error
}

func (e *RawValueError) Error() string {
	return fmt.Sprintf("%s for %s (%q): %v", ErrRawValue, e.Path, e.Value, e.Err)
}

func (e *RawValueError) Unwrap() []error {
	return []error{ErrRawValue, e.Err}
}
