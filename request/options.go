package request

import (
	"fmt"
	"log/slog"

	di "github.com/sectrean/scope-kit"
	"github.com/sectrean/scope-kit/dbkit"
	"github.com/sectrean/scope-kit/internal/errors"
)

// Option is used to configure a [Scope] when calling [New].
type Option interface {
	applyScope(*Scope) error
}

type optionFunc func(*Scope) error

func (f optionFunc) applyScope(s *Scope) error {
	return f(s)
}

// WithDefaultDatabase sets the database used by [Scope.Connect] when it is called
// without a database ID.
func WithDefaultDatabase(id dbkit.DatabaseID) Option {
	return optionFunc(func(s *Scope) error {
		if id.Name == "" {
			return errors.New("with default database: name is empty")
		}
		s.defaultDB = &id
		return nil
	})
}

// WithLogger sets the logger used for connection errors. The default is [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(s *Scope) error {
		if logger == nil {
			return errors.New("with logger: logger is nil")
		}
		s.logger = logger
		return nil
	})
}

// WithReleasePolicy sets how [Scope.Teardown] handles connections that fail to go back
// to their pool. The default is [LogReleaseErrors].
func WithReleasePolicy(p ReleasePolicy) Option {
	return optionFunc(func(s *Scope) error {
		if p > PanicOnReleaseError {
			return errors.Errorf("with release policy: %s", p)
		}
		s.policy = p
		return nil
	})
}

// WithScopeOptions adds options used when creating the private child scope,
// such as services that only exist for this request.
func WithScopeOptions(opts ...di.ContainerOption) Option {
	return optionFunc(func(s *Scope) error {
		s.scopeOpts = append(s.scopeOpts, opts...)
		return nil
	})
}

// ReleasePolicy controls what happens when cached connections cannot be released.
type ReleasePolicy uint8

const (
	// LogReleaseErrors logs the failure and returns it from [Scope.Teardown].
	LogReleaseErrors ReleasePolicy = iota

	// PanicOnReleaseError treats a failed release as unrecoverable and panics after the
	// private scope has been closed.
	PanicOnReleaseError
)

func (p ReleasePolicy) String() string {
	switch p {
	case LogReleaseErrors:
		return "LogReleaseErrors"
	case PanicOnReleaseError:
		return "PanicOnReleaseError"
	default:
		return fmt.Sprintf("Unknown ReleasePolicy %d", p)
	}
}
