package dihttp

import (
	"log/slog"

	di "github.com/sectrean/scope-kit"
	"github.com/sectrean/scope-kit/dbkit"
	"github.com/sectrean/scope-kit/internal/errors"
	"github.com/sectrean/scope-kit/request"
)

// ScopeMiddlewareOption is an option used to configure the scope middleware when calling [NewRequestScopeMiddleware].
type ScopeMiddlewareOption interface {
	applyScopeMiddleware(*scopeMiddleware) error
}

type scopeMiddlewareOption func(*scopeMiddleware) error

func (o scopeMiddlewareOption) applyScopeMiddleware(m *scopeMiddleware) error {
	return o(m)
}

// WithContainerOptions sets the options to use when creating the private [di.Container]
// of each request scope.
func WithContainerOptions(opts ...di.ContainerOption) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) error {
		m.containerOpts = append(m.containerOpts, opts...)
		return nil
	})
}

// WithRequestOptions sets the options to use when calling [request.New] for each request.
func WithRequestOptions(opts ...request.Option) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) error {
		m.reqOpts = append(m.reqOpts, opts...)
		return nil
	})
}

// WithDefaultDatabase sets the database used when a handler connects without a database ID.
//
// [NewRequestScopeMiddleware] returns an error if the parent container has no pool for id.
func WithDefaultDatabase(id dbkit.DatabaseID) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) error {
		m.defaultDB = &id
		return nil
	})
}

// WithLogger sets the logger used by the default error handlers and by each request scope.
func WithLogger(logger *slog.Logger) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) error {
		if logger == nil {
			return errors.New("WithLogger: logger is nil")
		}
		m.logger = logger
		return nil
	})
}

// WithNewScopeErrorHandler sets the error handler for when there is an error creating a new scope.
func WithNewScopeErrorHandler(h NewScopeErrorHandler) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) error {
		if h == nil {
			return errors.New("WithNewScopeErrorHandler: h is nil")
		}
		m.newScopeHandler = h
		return nil
	})
}

// WithScopeCloseErrorHandler sets the error handler for when there is an error tearing down the scope.
func WithScopeCloseErrorHandler(h ScopeCloseErrorHandler) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) error {
		if h == nil {
			return errors.New("WithScopeCloseErrorHandler: h is nil")
		}
		m.closeHandler = h
		return nil
	})
}
