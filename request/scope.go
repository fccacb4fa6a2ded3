/*
Package request provides the per-request execution scope of an HTTP server.

A [Scope] wraps the inbound [*http.Request] and a private child of the server's root
[di.Container]. Handlers use it to read and write the request, resolve services, and borrow
pooled database connections with [Scope.Connect]. Whoever creates a Scope must call
[Scope.Teardown] exactly once when the request is done; that is the only point at which
borrowed connections go back to their pools.

	scope, err := request.New(r, root,
		request.WithDefaultDatabase(dbkit.NewDatabaseID("main", "postgres")),
	)
	if err != nil {
		return err
	}
	defer scope.Teardown(ctx)
*/
package request

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"sync"
	"sync/atomic"

	di "github.com/sectrean/scope-kit"
	"github.com/sectrean/scope-kit/dbkit"
	"github.com/sectrean/scope-kit/internal/errors"
)

// ErrTornDown is returned when a [Scope] is used after [Scope.Teardown].
var ErrTornDown = errors.New("request scope torn down")

// Scope is the execution scope of a single request.
//
// A Scope is not meant to be shared between requests. Futures returned by [Scope.Connect]
// may complete on other goroutines.
type Scope struct {
	msg       *http.Request
	parent    *di.Container
	private   *di.Container
	params    Parameters
	defaultDB *dbkit.DatabaseID
	logger    *slog.Logger
	policy    ReleasePolicy
	scopeOpts []di.ContainerOption
	cache     atomic.Pointer[dbkit.ConnectionCache]
	active    atomic.Bool

	// Connect holds mu for reading; Teardown flips torndown holding it for writing.
	mu       sync.RWMutex
	torndown atomic.Bool
}

var _ di.Scope = (*Scope)(nil)

// New creates the [Scope] for r with a private child scope of parent.
//
// The private scope has these services registered in addition to the options passed with
// [WithScopeOptions]:
//   - the [*http.Request]
//   - the [*Scope] itself
//   - a [*dbkit.ConnectionCache] backed by the [dbkit.PoolSource] registered with parent
//
// Available options:
//   - [WithDefaultDatabase]
//   - [WithLogger]
//   - [WithReleasePolicy]
//   - [WithScopeOptions]
func New(r *http.Request, parent *di.Container, opts ...Option) (*Scope, error) {
	if r == nil {
		return nil, errors.New("new request scope: request is nil")
	}
	if parent == nil {
		return nil, errors.New("new request scope: parent is nil")
	}

	s := &Scope{
		msg:    r,
		parent: parent,
		logger: slog.Default(),
		policy: LogReleaseErrors,
	}

	var errs errors.MultiError
	for _, opt := range opts {
		errs = errs.Append(opt.applyScope(s))
	}
	if err := errs.Wrap("new request scope"); err != nil {
		return nil, err
	}

	if s.msg.Header == nil {
		s.msg.Header = make(http.Header)
	}

	logger := s.logger
	scopeOpts := append([]di.ContainerOption{
		di.WithService(r),
		di.WithService(s),
		di.WithService(func(pools dbkit.PoolSource) *dbkit.ConnectionCache {
			return dbkit.NewConnectionCache(pools, logger)
		}),
	}, s.scopeOpts...)
	s.scopeOpts = nil

	private, err := parent.NewScope(scopeOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "new request scope")
	}
	s.private = private

	return s, nil
}

// Parent returns the shared container the request scope was created from.
func (s *Scope) Parent() *di.Container {
	return s.parent
}

// Private returns the request's own child container.
func (s *Scope) Private() *di.Container {
	return s.private
}

// Request returns the underlying message.
func (s *Scope) Request() *http.Request {
	return s.msg
}

// Parameters returns the route parameters. The router populates them before the
// handler runs.
func (s *Scope) Parameters() *Parameters {
	return &s.params
}

// Contains returns true if the private scope or one of its parents has a service of the given type.
func (s *Scope) Contains(t reflect.Type, opts ...di.ResolveOption) bool {
	return s.private.Contains(t, append(opts, di.ForRequest())...)
}

// Resolve a service from the private scope. The lookup is tagged with [di.ForRequest],
// so registrations in the private scope win, then [di.Scoped] ones over process-wide ones.
func (s *Scope) Resolve(ctx context.Context, t reflect.Type, opts ...di.ResolveOption) (any, error) {
	return s.private.Resolve(ctx, t, append(opts, di.ForRequest())...)
}

// Make resolves a Service for the request scope s.
func Make[Service any](ctx context.Context, s *Scope, opts ...di.ResolveOption) (Service, error) {
	return di.Resolve[Service](ctx, s, opts...)
}

// Connect returns the connection to the database identified by id, borrowed from its pool
// for the rest of the request.
//
// Every call for the same database during a request returns the same [dbkit.Future], and the
// pool is asked only once. If id is nil the scope's default database is used. Without one
// the Future fails with [dbkit.ErrNoDefaultDatabase].
//
// The scope is marked as having active connections as soon as Connect is called, before
// the Future completes. Connect is safe to call from multiple goroutines, and a Teardown
// that starts while Connect is running waits for it, so the connection is released.
func (s *Scope) Connect(ctx context.Context, id *dbkit.DatabaseID) *dbkit.Future[dbkit.Conn] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.torndown.Load() {
		return dbkit.Failed[dbkit.Conn](errors.Wrap(ErrTornDown, "connect"))
	}
	s.active.Store(true)

	if id == nil {
		if s.defaultDB == nil {
			s.logger.ErrorContext(ctx, "connection requested with no default database configured",
				"method", s.msg.Method,
				"target", s.target(),
			)
			return dbkit.Failed[dbkit.Conn](errors.Wrap(dbkit.ErrNoDefaultDatabase, "connect"))
		}
		id = s.defaultDB
	}

	cache := s.cache.Load()
	if cache == nil {
		resolved, err := Make[*dbkit.ConnectionCache](ctx, s)
		if err != nil {
			return dbkit.Failed[dbkit.Conn](errors.Wrapf(err, "connect %s", id))
		}
		s.cache.CompareAndSwap(nil, resolved)
		cache = s.cache.Load()
	}

	return cache.Connect(ctx, *id)
}

// HasActiveConnections reports whether Connect has been called since the scope was
// created and the scope has not been torn down yet.
func (s *Scope) HasActiveConnections() bool {
	return s.active.Load()
}

// Teardown ends the request scope.
//
// If any connection was requested, every cached connection is released back to its pool.
// Connections that are still being acquired are released when they arrive. If no connection
// was requested, the pools are not touched. The private scope is closed afterwards.
//
// Teardown runs once; later calls return [ErrTornDown]. Release failures are handled according
// to the scope's [ReleasePolicy].
func (s *Scope) Teardown(ctx context.Context) error {
	s.mu.Lock()
	if !s.torndown.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return errors.Wrap(ErrTornDown, "teardown")
	}
	s.mu.Unlock()

	var releaseErr error
	if s.active.Load() {
		// The request context is often canceled by now, but the pools still need the connections back
		if cache := s.cache.Load(); cache != nil {
			releaseErr = cache.ReleaseAll(context.WithoutCancel(ctx))
		}
		s.active.Store(false)
	}

	closeErr := s.private.Close(ctx)

	if releaseErr != nil {
		switch s.policy {
		case PanicOnReleaseError:
			panic(errors.Wrap(releaseErr, "teardown"))
		default:
			s.logger.ErrorContext(ctx, "error releasing request connections",
				"method", s.msg.Method,
				"target", s.target(),
				"error", releaseErr,
			)
		}
	}

	var errs errors.MultiError
	errs = errs.Append(releaseErr)
	errs = errs.Append(closeErr)

	return errs.Wrap("teardown")
}
