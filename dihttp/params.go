package dihttp

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"

	"github.com/sectrean/scope-kit/request"
)

// ParameterSource copies the route parameters the router matched for r into params.
type ParameterSource func(r *http.Request, params *request.Parameters)

// ChiParameters reads route parameters from a [chi.Router], in the order they appear in the pattern.
func ChiParameters(r *http.Request, params *request.Parameters) {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return
	}

	for i, key := range rctx.URLParams.Keys {
		if i < len(rctx.URLParams.Values) {
			params.Set(key, rctx.URLParams.Values[i])
		}
	}
}

// MuxParameters reads route variables from a [mux.Router].
//
// Variables are added in the order they appear in the route template. If the route is not
// available they are added in name order.
func MuxParameters(r *http.Request, params *request.Parameters) {
	vars := mux.Vars(r)
	if len(vars) == 0 {
		return
	}

	var names []string
	if route := mux.CurrentRoute(r); route != nil {
		names, _ = route.GetVarNames()
	}
	if len(names) == 0 {
		for name := range vars {
			names = append(names, name)
		}
		slices.Sort(names)
	}

	for _, name := range names {
		if val, ok := vars[name]; ok {
			params.Set(name, val)
		}
	}
}

// HandlerFunc handles a request through its [request.Scope].
type HandlerFunc func(w http.ResponseWriter, s *request.Scope)

// Handler adapts h to an [http.Handler] behind the scope middleware.
//
// The route parameters are copied from src into the scope before h is called, so Handler
// must be registered as the route's handler rather than as middleware in front of the router.
// src may be nil if the route has no parameters.
func Handler(h HandlerFunc, src ParameterSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := request.FromContext(r.Context())
		if s == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if src != nil {
			src(r, s.Parameters())
		}

		h(w, s)
	})
}
