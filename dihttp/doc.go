/*
Package dihttp provides HTTP middleware that creates a [request.Scope] for each request.

Example:

	package main

	import (
		"net/http"

		"github.com/go-chi/chi/v5"

		di "github.com/sectrean/scope-kit"
		"github.com/sectrean/scope-kit/dbkit"
		"github.com/sectrean/scope-kit/dihttp"
		"github.com/sectrean/scope-kit/request"
	)

	func main() {
		mainDB := dbkit.NewDatabaseID("main", "postgres")

		c, err := di.NewContainer(
			dbkit.WithPools(dbkit.NewPools().Register(mainDB, dbkit.NewSQLPool(db))),
			di.WithService(NewUserStore, di.Scoped),
		)

		scopeMiddleware, err := dihttp.NewRequestScopeMiddleware(c,
			dihttp.WithDefaultDatabase(mainDB),
		)

		r := chi.NewRouter()
		r.Use(scopeMiddleware)
		r.Get("/users/{id}", dihttp.Handler(func(w http.ResponseWriter, s *request.Scope) {
			ctx := s.Request().Context()
			conn, err := dbkit.ConnectAs[*sql.Conn](ctx, s.Connect(ctx, nil))
			// ...
		}, dihttp.ChiParameters))

		http.ListenAndServe(":8080", r)
	}

The scope is torn down after the handler returns, which releases every database connection
the request borrowed.
*/
package dihttp
