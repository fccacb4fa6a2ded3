package dihttp

import (
	"context"
	"log/slog"
	"net/http"

	di "github.com/sectrean/scope-kit"
	"github.com/sectrean/scope-kit/dbkit"
	"github.com/sectrean/scope-kit/internal/errors"
	"github.com/sectrean/scope-kit/request"
)

// NewRequestScopeMiddleware returns middleware that creates a [request.Scope] for each request
// and tears it down after the request has been processed, even if the handler panics.
//
// The current [*http.Request] and the [*request.Scope] are registered with the private scope.
// They can be used as dependencies for scoped services.
//
// The scope is stored on the request context and can be accessed with [request.FromContext],
// [dicontext.Scope], [dicontext.Resolve], or [dicontext.MustResolve].
//
// Available options:
//   - [WithContainerOptions] sets options used to create each private scope.
//   - [WithRequestOptions] sets options used to create each request scope.
//   - [WithDefaultDatabase] sets the default database and checks its pool is registered.
//   - [WithNewScopeErrorHandler] handles errors creating the scope.
//   - [WithScopeCloseErrorHandler] handles errors tearing down the scope.
//   - [WithLogger] sets the logger used by the default error handlers and the scope.
func NewRequestScopeMiddleware(parent *di.Container, opts ...ScopeMiddlewareOption) (func(http.Handler) http.Handler, error) {
	if parent == nil {
		return nil, errors.New("dihttp.NewRequestScopeMiddleware: parent is nil")
	}

	mw := &scopeMiddleware{
		parent: parent,
		logger: slog.Default(),
	}

	var errs errors.MultiError
	for _, opt := range opts {
		errs = errs.Append(opt.applyScopeMiddleware(mw))
	}
	if err := errs.Wrap("dihttp.NewRequestScopeMiddleware"); err != nil {
		return nil, err
	}

	if err := mw.validate(); err != nil {
		return nil, errors.Wrap(err, "dihttp.NewRequestScopeMiddleware")
	}

	if mw.newScopeHandler == nil {
		mw.newScopeHandler = mw.defaultNewScopeErrorHandler
	}
	if mw.closeHandler == nil {
		mw.closeHandler = mw.defaultScopeCloseErrorHandler
	}

	mw.reqOpts = append([]request.Option{request.WithLogger(mw.logger)}, mw.reqOpts...)
	if mw.defaultDB != nil {
		mw.reqOpts = append(mw.reqOpts, request.WithDefaultDatabase(*mw.defaultDB))
	}

	return func(next http.Handler) http.Handler {
		return &scopeHandler{
			scopeMiddleware: mw,
			next:            next,
		}
	}, nil
}

// NewScopeErrorHandler is a function that writes an error response to the client.
// This is called by the scope middleware when there is an error creating the [request.Scope].
//
// The default handler logs the error and writes a 500 Internal Server Error response.
type NewScopeErrorHandler = func(w http.ResponseWriter, r *http.Request, err error)

// ScopeCloseErrorHandler is a function that handles errors when tearing down the [request.Scope]
// after the request has completed.
//
// The default handler logs the error.
type ScopeCloseErrorHandler = func(r *http.Request, err error)

type scopeMiddleware struct {
	parent          *di.Container
	logger          *slog.Logger
	containerOpts   []di.ContainerOption
	reqOpts         []request.Option
	defaultDB       *dbkit.DatabaseID
	newScopeHandler NewScopeErrorHandler
	closeHandler    ScopeCloseErrorHandler
}

// validate checks the static configuration up front so that a missing pool is reported
// at startup instead of on the first request.
func (m *scopeMiddleware) validate() error {
	if m.defaultDB == nil {
		return nil
	}

	pools, err := di.Resolve[dbkit.PoolSource](context.Background(), m.parent)
	if err != nil {
		return errors.Wrapf(err, "default database %s", m.defaultDB)
	}

	_, err = pools.Pool(*m.defaultDB)
	return errors.Wrap(err, "default database")
}

func (m *scopeMiddleware) defaultNewScopeErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	m.logger.ErrorContext(r.Context(), "error creating new HTTP request scope", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (m *scopeMiddleware) defaultScopeCloseErrorHandler(r *http.Request, err error) {
	m.logger.ErrorContext(r.Context(), "error closing HTTP request scope", "error", err)
}

type scopeHandler struct {
	*scopeMiddleware
	next http.Handler
}

func (h *scopeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The scope owns a copy of the request, which is also the one passed to the next handler
	req := r.WithContext(r.Context())

	opts := append([]request.Option{}, h.reqOpts...)
	if len(h.containerOpts) > 0 {
		opts = append(opts, request.WithScopeOptions(h.containerOpts...))
	}

	scope, err := request.New(req, h.parent, opts...)
	if err != nil {
		h.newScopeHandler(w, r, err)
		return
	}

	ctx := request.WithScope(req.Context(), scope)
	*req = *req.WithContext(ctx)

	defer func() {
		if err := scope.Teardown(ctx); err != nil {
			h.closeHandler(req, err)
		}
	}()

	h.next.ServeHTTP(w, req)
}
