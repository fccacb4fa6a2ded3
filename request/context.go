package request

import (
	"context"
)

type scopeContextKey struct{}

// WithScope returns a new [context.Context] that carries the provided [*Scope].
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// FromContext returns the [*Scope] stored on the [context.Context], if present.
func FromContext(ctx context.Context) *Scope {
	if s, ok := ctx.Value(scopeContextKey{}).(*Scope); ok {
		return s
	}
	return nil
}
