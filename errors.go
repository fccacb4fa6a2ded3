package di

import (
	"github.com/sectrean/scope-kit/internal/errors"
)

var (
	// ErrServiceNotRegistered is returned when neither a scope nor any of its parents
	// has a registration for the requested type.
	ErrServiceNotRegistered = errors.New("service not registered")

	// ErrDependencyCycle is returned when a dependency cycle is detected.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrContainerClosed is returned when a closed Container is used.
	ErrContainerClosed = errors.New("container closed")
)
