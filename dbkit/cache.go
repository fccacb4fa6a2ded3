package dbkit

import (
	"context"
	"log/slog"
	"reflect"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sectrean/scope-kit/internal/errors"
)

// ConnectionCache memoizes connection acquisitions for one request.
//
// There is at most one [Pool.Acquire] call per [DatabaseID] for the lifetime of the cache.
// A failed acquisition stays cached; later lookups for the same ID get the same failed [Future].
//
// A ConnectionCache is meant to be registered with a request's private scope.
type ConnectionCache struct {
	pools    PoolSource
	logger   *slog.Logger
	entries  *xsync.MapOf[DatabaseID, *cacheEntry]
	acquires atomic.Int64
}

type cacheEntry struct {
	id     DatabaseID
	pool   Pool
	future *Future[Conn]
}

// NewConnectionCache returns an empty cache that acquires from pools.
//
// If logger is nil, [slog.Default] is used.
func NewConnectionCache(pools PoolSource, logger *slog.Logger) *ConnectionCache {
	if logger == nil {
		logger = slog.Default()
	}

	return &ConnectionCache{
		pools:   pools,
		logger:  logger,
		entries: xsync.NewMapOf[DatabaseID, *cacheEntry](),
	}
}

// Connect returns the connection for id, acquiring it from the pool on the first call.
//
// The returned Future fails with an [*AcquireError] if the pool could not be found or
// could not produce a connection.
func (c *ConnectionCache) Connect(ctx context.Context, id DatabaseID) *Future[Conn] {
	entry, _ := c.entries.LoadOrCompute(id, func() *cacheEntry {
		return c.acquire(ctx, id)
	})

	return entry.future
}

func (c *ConnectionCache) acquire(ctx context.Context, id DatabaseID) *cacheEntry {
	entry := &cacheEntry{id: id}

	pool, err := c.pools.Pool(id)
	if err != nil {
		entry.future = Failed[Conn](&AcquireError{ID: id, Err: err})
		return entry
	}
	entry.pool = pool

	c.acquires.Add(1)
	future, complete := NewPromise[Conn]()
	pool.Acquire(ctx, id).OnComplete(func(conn Conn, err error) {
		if err != nil {
			complete(nil, &AcquireError{ID: id, Err: err})
			return
		}
		complete(conn, nil)
	})
	entry.future = future

	return entry
}

// Len returns the number of cached entries, including failed and pending ones.
func (c *ConnectionCache) Len() int {
	return c.entries.Size()
}

// Acquisitions returns the number of times a pool was asked for a connection.
func (c *ConnectionCache) Acquisitions() int {
	return int(c.acquires.Load())
}

// ReleaseAll removes every entry from the cache and gives each connection back to its pool.
//
// Connections that are already available are released before ReleaseAll returns, and their
// release errors are returned as joined [*ReleaseError]s. Acquisitions that are still pending
// are released as soon as they complete; errors from those late releases are logged.
// Failed acquisitions have nothing to release.
func (c *ConnectionCache) ReleaseAll(ctx context.Context) error {
	var errs errors.MultiError

	c.entries.Range(func(id DatabaseID, entry *cacheEntry) bool {
		c.entries.Delete(id)
		errs = errs.Append(c.release(ctx, entry))
		return true
	})

	return errs.Join()
}

func (c *ConnectionCache) release(ctx context.Context, entry *cacheEntry) error {
	if entry.pool == nil {
		return nil
	}

	conn, done, err := entry.future.Poll()
	if done {
		if err != nil {
			return nil
		}
		return c.releaseConn(ctx, entry, conn)
	}

	// The request is done with the connection but the pool has not produced it yet
	lateCtx := context.WithoutCancel(ctx)
	entry.future.OnComplete(func(conn Conn, err error) {
		if err != nil {
			return
		}

		if relErr := c.releaseConn(lateCtx, entry, conn); relErr != nil {
			c.logger.ErrorContext(lateCtx, "error releasing late connection",
				"database", entry.id.String(),
				"error", relErr,
			)
		}
	})

	return nil
}

func (c *ConnectionCache) releaseConn(ctx context.Context, entry *cacheEntry, conn Conn) error {
	err := entry.pool.Release(ctx, entry.id, conn)
	if err != nil {
		return &ReleaseError{ID: entry.id, Err: err}
	}

	return nil
}

// ConnectAs waits for the connection in f and returns it as a C.
func ConnectAs[C any](ctx context.Context, f *Future[Conn]) (C, error) {
	var zero C

	conn, err := f.Result(ctx)
	if err != nil {
		return zero, err
	}

	typed, ok := conn.(C)
	if !ok {
		return zero, errors.Errorf("connection type %T is not %s", conn, reflect.TypeFor[C]())
	}

	return typed, nil
}
