/*
Package dbkit borrows pooled database connections for the lifetime of a request scope.

A [ConnectionCache] lives in each request's private scope. The first [ConnectionCache.Connect]
for a [DatabaseID] asks the [Pool] for a connection; every later call for the same ID in the same
request gets the same [Future] back. [ConnectionCache.ReleaseAll] hands every borrowed
connection back to its pool when the request is done.

Pools are registered once per process in a [Pools] registry, which is resolved from the
parent container:

	pools := dbkit.NewPools().
		Register(dbkit.NewDatabaseID("main", "postgres"), dbkit.NewSQLPool(db))

	c, err := di.NewContainer(
		dbkit.WithPools(pools),
	)
*/
package dbkit

import "fmt"

// DatabaseID identifies one logical database a [Pool] can serve connections for.
//
// Name is the logical name used by application code. Kind is the declared
// connection type, usually the driver name.
type DatabaseID struct {
	Name string
	Kind string
}

// NewDatabaseID returns a [DatabaseID].
func NewDatabaseID(name, kind string) DatabaseID {
	return DatabaseID{Name: name, Kind: kind}
}

// Ref returns a pointer to a copy of id, for APIs that take an optional ID.
func (id DatabaseID) Ref() *DatabaseID {
	return &id
}

func (id DatabaseID) String() string {
	if id.Kind == "" {
		return id.Name
	}
	return fmt.Sprintf("%s (%s)", id.Name, id.Kind)
}
