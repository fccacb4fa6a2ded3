// Package dicontext carries a [di.Scope] on a [context.Context].
//
// A request scope stored with [request.WithScope] is also found, so handlers behind the
// dihttp middleware can resolve services without knowing about the request package.
package dicontext

import (
	"context"
	"reflect"

	di "github.com/sectrean/scope-kit"
	"github.com/sectrean/scope-kit/internal/errors"
	"github.com/sectrean/scope-kit/request"
)

type scopeContextKey struct{}

// WithScope returns a new [context.Context] that carries the provided [di.Scope].
func WithScope(ctx context.Context, s di.Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// Scope returns the [di.Scope] stored on the [context.Context].
//
// A scope stored with [WithScope] takes precedence over a request scope.
// Returns nil if there is neither.
func Scope(ctx context.Context) di.Scope {
	if s, ok := ctx.Value(scopeContextKey{}).(di.Scope); ok {
		return s
	}
	if s := request.FromContext(ctx); s != nil {
		return s
	}
	return nil
}

// Resolve a service of type Service from the [di.Scope] stored on the
// [context.Context].
func Resolve[Service any](ctx context.Context, opts ...di.ResolveOption) (Service, error) {
	var val Service

	s := Scope(ctx)
	if s == nil {
		return val, errors.Errorf("resolve %s from context: scope not found on context",
			reflect.TypeFor[Service]())
	}

	val, err := di.Resolve[Service](ctx, s, opts...)
	return val, errors.Wrap(err, "resolve from context")
}

// MustResolve resolves a service of type Service from the [di.Scope] stored on the
// [context.Context].
//
// If the service cannot be resolved, this function will panic.
func MustResolve[Service any](ctx context.Context, opts ...di.ResolveOption) Service {
	val, err := Resolve[Service](ctx, opts...)
	if err != nil {
		panic(err)
	}
	return val
}

// Invoke calls fn with its parameters resolved from the [di.Scope] stored on the
// [context.Context]. See [di.Invoke].
func Invoke(ctx context.Context, fn any, opts ...di.InvokeOption) error {
	s := Scope(ctx)
	if s == nil {
		return errors.Errorf("invoke %T from context: scope not found on context", fn)
	}

	return di.Invoke(ctx, s, fn, opts...)
}
