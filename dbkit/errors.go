package dbkit

import (
	"fmt"

	"github.com/sectrean/scope-kit/internal/errors"
)

var (
	// ErrNoDefaultDatabase is returned when a connection is requested without a
	// database ID and no default database is configured.
	ErrNoDefaultDatabase = errors.New("connection requested with no default database configured")

	// ErrPoolNotRegistered is returned when there is no pool for a database ID.
	ErrPoolNotRegistered = errors.New("pool not registered")
)

// AcquireError is the error of a [Future] when a pool could not produce a connection.
type AcquireError struct {
	ID  DatabaseID
	Err error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("acquire connection to %s: %v", e.ID, e.Err)
}

func (e *AcquireError) Unwrap() error {
	return e.Err
}

// ReleaseError is returned when a connection could not be returned to its pool.
type ReleaseError struct {
	ID  DatabaseID
	Err error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("release connection to %s: %v", e.ID, e.Err)
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}
