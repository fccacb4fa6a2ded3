package errors

import (
	stderrors "errors"
)

// MultiError is a collection of errors.
type MultiError []error

// Append appends an error to the collection. Nil errors are skipped.
func (e MultiError) Append(err error) MultiError {
	if err == nil {
		return e
	}
	return append(e, err)
}

// Join combines all errors into a single error.
//
// A single error is returned as-is so its message is not changed.
func (e MultiError) Join() error {
	switch len(e) {
	case 0:
		return nil
	case 1:
		return e[0]
	default:
		return stderrors.Join(e...)
	}
}

// Wrap joins errors and then wraps the joined error with a message.
//
// Returns nil if there are no errors.
func (e MultiError) Wrap(msg string) error {
	return Wrap(e.Join(), msg)
}
