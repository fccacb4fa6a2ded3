package di

import (
	"reflect"
)

// ResolveOption can be used when calling [Resolve], [MustResolve],
// [Container.Resolve], or [Container.Contains].
//
// Available options:
//   - [WithTag]
//   - [ForRequest]
type ResolveOption interface {
	applyResolveConfig(*resolveConfig)
}

type resolveConfig struct {
	key        serviceKey
	forRequest bool
}

func newResolveConfig(t reflect.Type, opts []ResolveOption) resolveConfig {
	cfg := resolveConfig{
		key: serviceKey{Type: t},
	}
	for _, opt := range opts {
		opt.applyResolveConfig(&cfg)
	}

	return cfg
}

// ForRequest marks a resolve call as coming from request-scoped code.
//
// Registrations in the scope being resolved from always win. Otherwise, when a type has both
// a [Scoped] registration and a Singleton or Transient one in the parents, the Scoped
// registration wins even if the other one is nearer.
func ForRequest() ResolveOption {
	return forRequestOption{}
}

type forRequestOption struct{}

func (forRequestOption) applyResolveConfig(c *resolveConfig) {
	c.forRequest = true
}
