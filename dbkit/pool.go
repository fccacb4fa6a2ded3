package dbkit

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"

	di "github.com/sectrean/scope-kit"
	"github.com/sectrean/scope-kit/internal/errors"
)

// Conn is a connection handle borrowed from a [Pool].
type Conn any

// Pool hands out connections and takes them back.
//
// Acquire must not block; it returns a pending [Future] when a connection is not
// immediately available. A connection returned by Acquire must be given back with Release
// rather than closed.
type Pool interface {
	Acquire(ctx context.Context, id DatabaseID) *Future[Conn]
	Release(ctx context.Context, id DatabaseID, conn Conn) error
}

// PoolSource finds the [Pool] for a database.
//
// PoolSource is implemented by [*Pools].
type PoolSource interface {
	Pool(id DatabaseID) (Pool, error)
}

// Pools is a registry of pools by [DatabaseID]. It is safe for concurrent use.
type Pools struct {
	pools *xsync.MapOf[DatabaseID, Pool]
}

var _ PoolSource = (*Pools)(nil)

// NewPools returns an empty registry.
func NewPools() *Pools {
	return &Pools{
		pools: xsync.NewMapOf[DatabaseID, Pool](),
	}
}

// Register sets the pool for id, replacing any previous one.
func (p *Pools) Register(id DatabaseID, pool Pool) *Pools {
	p.pools.Store(id, pool)
	return p
}

// Pool returns the pool registered for id.
func (p *Pools) Pool(id DatabaseID) (Pool, error) {
	pool, ok := p.pools.Load(id)
	if !ok {
		return nil, errors.Wrapf(ErrPoolNotRegistered, "pool %s", id)
	}

	return pool, nil
}

// Validate returns an error for each id that has no registered pool.
func (p *Pools) Validate(ids ...DatabaseID) error {
	var errs errors.MultiError
	for _, id := range ids {
		_, err := p.Pool(id)
		errs = errs.Append(err)
	}

	return errs.Join()
}

// Len returns the number of registered pools.
func (p *Pools) Len() int {
	return p.pools.Size()
}

// WithPools registers the registry with a root [di.Container] so that request scopes
// can find their pools.
func WithPools(pools *Pools) di.ContainerOption {
	return di.WithService(pools, di.As[PoolSource]())
}
