package di

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/sectrean/scope-kit/internal/errors"
)

// Container is a dependency injection container.
// It is used to resolve services by first resolving their dependencies.
//
// A Container created with [Container.NewScope] is a child scope. Lookups that are not
// satisfied by the child fall back to the parent, up to the root Container.
type Container struct {
	parent     *Container
	services   map[serviceKey][]service
	resolved   map[service]resolveResult
	closers    []Closer
	resolvedMu sync.RWMutex
	closedMu   sync.RWMutex
	closersMu  sync.Mutex
	closed     bool
}

var _ Scope = (*Container)(nil)

// NewContainer creates a new [Container] with the provided options.
//
// Available options:
//   - [WithService] registers a service with a value or constructor function.
//   - [WithModule] applies a group of options.
//   - [WithDependencyValidation] validates service dependencies.
func NewContainer(opts ...ContainerOption) (*Container, error) {
	c := &Container{
		services: make(map[serviceKey][]service),
		resolved: make(map[service]resolveResult),
	}

	err := c.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "new container")
	}

	return c, nil
}

// ContainerOption is used to configure a new [Container] when calling [NewContainer]
// or [Container.NewScope].
type ContainerOption interface {
	order() optionOrder
	applyContainer(*Container) error
}

func (c *Container) applyOptions(opts []ContainerOption) error {
	// Flatten any modules before sorting and applying options
	opts = flattenModules(opts)

	// Use stable sort because the registration order of services matters
	slices.SortStableFunc(opts, func(a, b ContainerOption) int {
		return cmp.Compare(a.order(), b.order())
	})

	var errs errors.MultiError
	for _, o := range opts {
		errs = errs.Append(o.applyContainer(c))
	}

	return errs.Join()
}

func (c *Container) register(svc service) {
	if c.services == nil {
		c.services = make(map[serviceKey][]service)
	}

	svc.setScope(c)

	c.registerType(svc.Type(), svc)
	for _, alias := range svc.Aliases() {
		c.registerType(alias, svc)
	}

	// Value services are never "resolved", so their closers are added up front.
	// No locks are needed because this only runs while building the Container.
	if vs, ok := svc.(*valueService); ok {
		if closer := svc.CloserFor(vs.val); closer != nil {
			c.closers = append(c.closers, closer)
		}
	}
}

func (c *Container) registerType(t reflect.Type, svc service) {
	key := serviceKey{
		Type: t,
		Tag:  svc.Tag(),
	}
	c.services[key] = append(c.services[key], svc)
}

// WithDependencyValidation validates registered services when the [Container] is created.
//
// This will check that all dependencies are registered and that there are no dependency cycles.
// It will return an error with details if any issues are found.
//
// Scoped services registered on a root Container are not validated because their
// dependencies may be registered with a child scope.
func WithDependencyValidation() ContainerOption {
	return newContainerOption(orderValidation, func(c *Container) error {
		return errors.Wrap(c.validateDependencies(), "with dependency validation")
	})
}

func (c *Container) validateDependencies() error {
	var errs errors.MultiError
	problems := make(map[service]string)

	check := func(svc service) {
		prob := c.validateService(svc, problems, make(resolveVisitor))
		if prob != "" {
			errs = errs.Append(errors.Errorf("service %s: %s", svc.Type(), prob))
		}
	}

	for _, svc := range c.uniqueServices() {
		if svc.Lifetime() == Scoped && c.parent == nil {
			continue
		}
		check(svc)
	}

	// A child scope can satisfy the dependencies of Scoped services registered higher up
	if c.parent != nil {
		for scope := c.parent; scope != nil; scope = scope.parent {
			for _, svc := range scope.uniqueServices() {
				if svc.Lifetime() == Scoped {
					check(svc)
				}
			}
		}
	}

	return errs.Join()
}

// uniqueServices returns the registered services in a stable order without duplicates
// from aliases and tags.
func (c *Container) uniqueServices() []service {
	seen := make(map[service]struct{})
	var svcs []service

	keys := make([]serviceKey, 0, len(c.services))
	for key := range c.services {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b serviceKey) int {
		return strings.Compare(a.String(), b.String())
	})

	for _, key := range keys {
		for _, svc := range c.services[key] {
			if _, ok := seen[svc]; ok {
				continue
			}
			seen[svc] = struct{}{}
			svcs = append(svcs, svc)
		}
	}

	return svcs
}

func (c *Container) validateService(svc service, problems map[service]string, visitor resolveVisitor) string {
	if prob, ok := problems[svc]; ok {
		return prob
	}

	deps := svc.Dependencies()
	if len(deps) == 0 {
		problems[svc] = ""
		return ""
	}

	if !visitor.Enter(svc) {
		return ErrDependencyCycle.Error()
	}
	defer visitor.Leave(svc)

	var found []string
	for _, depKey := range deps {
		if depKey.Type == typeContext || depKey.Type == typeScope {
			continue
		}

		depSvc := c.lookupService(depKey, false)
		if depSvc == nil {
			found = append(found, fmt.Sprintf("dependency %s: %s", depKey, ErrServiceNotRegistered))
			continue
		}

		prob := c.validateService(depSvc, problems, visitor)
		if prob != "" {
			found = append(found, fmt.Sprintf("dependency %s: %s", depKey, prob))
		}
	}

	prob := strings.Join(found, "; ")
	problems[svc] = prob
	return prob
}

// lookupService finds the service registered for key, starting at c and walking up
// through the parents. The last registration in the nearest scope wins.
//
// When forRequest is set, registrations in c itself belong to the request and win.
// Otherwise a Scoped registration in any parent is preferred over a nearer Singleton
// or Transient one.
func (c *Container) lookupService(key serviceKey, forRequest bool) service {
	if forRequest {
		if svcs := c.services[key]; len(svcs) > 0 {
			return svcs[len(svcs)-1]
		}

		for scope := c.parent; scope != nil; scope = scope.parent {
			svcs := scope.services[key]
			for i := len(svcs) - 1; i >= 0; i-- {
				if svcs[i].Lifetime() == Scoped {
					return svcs[i]
				}
			}
		}
	}

	for scope := c; scope != nil; scope = scope.parent {
		svcs, ok := scope.services[key]
		if !ok || len(svcs) == 0 {
			continue
		}

		return svcs[len(svcs)-1]
	}

	return nil
}

// NewScope creates a new child [Container].
//
// Services registered with the parent [Container] will be inherited by the child [Container].
// Additional services can be registered with the new scope if needed and they will be isolated from
// the parent and sibling containers. [Scoped] services get one instance per child scope.
//
// Available options:
//   - [WithService] registers a service with a value or a function.
//   - [WithModule] applies a group of options.
//   - [WithDependencyValidation] validates service dependencies.
func (c *Container) NewScope(opts ...ContainerOption) (*Container, error) {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return nil, errors.Wrap(ErrContainerClosed, "new scope")
	}

	scope := &Container{
		parent:   c,
		services: make(map[serviceKey][]service),
		resolved: make(map[service]resolveResult),
	}

	err := scope.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "new scope")
	}

	return scope, nil
}

// Parent returns the parent [Container], or nil for a root Container.
func (c *Container) Parent() *Container {
	return c.parent
}

// Contains returns true if the [Container] or one of its parents has a service
// registered for the given [reflect.Type].
//
// Available options:
//   - [WithTag] specifies the tag associated with the service.
func (c *Container) Contains(t reflect.Type, opts ...ResolveOption) bool {
	cfg := newResolveConfig(t, opts)
	return c.lookupService(cfg.key, cfg.forRequest) != nil
}

// Resolve a service of the given [reflect.Type].
//
// The type must be registered with the [Container] or one of its parents.
// This will return an error if the [Container] has been closed.
//
// Available options:
//   - [WithTag] specifies the tag associated with the service.
//   - [ForRequest] prefers local, then [Scoped] registrations.
func (c *Container) Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error) {
	cfg := newResolveConfig(t, opts)

	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return nil, errors.Wrapf(ErrContainerClosed, "resolve %s", cfg.key)
	}

	val, err := c.resolveKey(ctx, cfg.key, cfg.forRequest, make(resolveVisitor))
	if err != nil {
		return val, errors.Wrapf(err, "resolve %s", cfg.key)
	}

	return val, nil
}

func (c *Container) resolveKey(
	ctx context.Context,
	key serviceKey,
	forRequest bool,
	visitor resolveVisitor,
) (any, error) {
	svc := c.lookupService(key, forRequest)
	if svc == nil {
		return nil, ErrServiceNotRegistered
	}

	return c.resolveService(ctx, key, svc, visitor)
}

func (c *Container) resolveService(
	ctx context.Context,
	key serviceKey,
	svc service,
	visitor resolveVisitor,
) (val any, err error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Singletons are resolved and stored in the scope they were registered with.
	// Everything else is resolved in the current scope.
	scope := c
	lifetime := svc.Lifetime()
	if lifetime == Singleton {
		scope = svc.Scope()
	} else if lifetime == Scoped && scope == svc.Scope() && scope.parent == nil {
		return nil, errors.New("scoped service must be resolved from a child scope")
	}

	if lifetime != Transient {
		scope.resolvedMu.RLock()
		res, exists := scope.resolved[svc]
		scope.resolvedMu.RUnlock()

		if exists {
			return res.val, res.err
		}
	}

	if !visitor.Enter(svc) {
		return nil, ErrDependencyCycle
	}
	defer visitor.Leave(svc)

	var depVals []reflect.Value

	deps := svc.Dependencies()
	if len(deps) > 0 {
		depVals = make([]reflect.Value, len(deps))
		for i, depKey := range deps {
			var depVal any
			var depErr error

			switch depKey.Type {
			case typeContext:
				depVal = ctx

			case typeScope:
				var ready func()
				depVal, ready = newInjectedScope(key, scope)
				defer ready()

			default:
				depVal, depErr = scope.resolveKey(ctx, depKey, false, visitor)
			}

			if depErr != nil {
				// Stop at the first error
				return nil, errors.Wrapf(depErr, "dependency %s", depKey)
			}
			depVals[i] = safeReflectValue(depKey.Type, depVal)
		}
	}

	if lifetime != Transient {
		// Lock before creating the service to make sure it is only created once
		scope.resolvedMu.Lock()
		defer scope.resolvedMu.Unlock()

		if res, exists := scope.resolved[svc]; exists {
			return res.val, res.err
		}

		defer func() {
			scope.resolved[svc] = resolveResult{val, err}
		}()
	}

	val, err = svc.New(depVals)
	if err != nil {
		return val, err
	}

	// Value service closers were added at registration
	if _, ok := svc.(*valueService); ok {
		return val, nil
	}

	if closer := svc.CloserFor(val); closer != nil {
		scope.closersMu.Lock()
		scope.closers = append(scope.closers, closer)
		scope.closersMu.Unlock()
	}

	return val, nil
}

// Close the [Container] and resolved services.
//
// Services are closed in the reverse order they were resolved/created.
// Errors returned from closing services are joined together.
//
// Close will return an error if called more than once.
func (c *Container) Close(ctx context.Context) error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return errors.Wrap(ErrContainerClosed, "close")
	}
	c.closed = true

	c.closersMu.Lock()
	closers := c.closers
	c.closers = nil
	c.closersMu.Unlock()

	// Close services in LIFO order because of dependencies
	var errs errors.MultiError
	for i := len(closers) - 1; i >= 0; i-- {
		errs = errs.Append(closers[i].Close(ctx))
	}

	return errs.Wrap("close")
}

type optionOrder int8

const (
	orderService optionOrder = iota
	orderValidation
)

func newContainerOption(order optionOrder, fn func(*Container) error) ContainerOption {
	return containerOption{fn: fn, ord: order}
}

type containerOption struct {
	fn  func(*Container) error
	ord optionOrder
}

func (o containerOption) order() optionOrder {
	return o.ord
}

func (o containerOption) applyContainer(c *Container) error {
	return o.fn(c)
}

type resolveResult struct {
	val any
	err error
}

type resolveVisitor map[service]struct{}

func (v resolveVisitor) Enter(s service) bool {
	if _, exists := v[s]; exists {
		return false
	}

	v[s] = struct{}{}
	return true
}

func (v resolveVisitor) Leave(s service) {
	delete(v, s)
}
