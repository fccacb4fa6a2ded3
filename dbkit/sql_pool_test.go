package dbkit_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/scope-kit/dbkit"
	"github.com/sectrean/scope-kit/internal/errors"
)

// fakeDriver opens connections that support nothing but Close.
type fakeDriver struct {
	opened atomic.Int32
}

func (d *fakeDriver) Open(string) (driver.Conn, error) {
	d.opened.Add(1)
	return fakeConn{}, nil
}

type fakeConn struct{}

func (fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (fakeConn) Close() error                        { return nil }
func (fakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

type fakeConnector struct {
	d *fakeDriver
}

func (c fakeConnector) Connect(context.Context) (driver.Conn, error) { return c.d.Open("") }
func (c fakeConnector) Driver() driver.Driver                        { return c.d }

func Test_SQLPool(t *testing.T) {
	ctx := context.Background()
	sqlDB := dbkit.NewDatabaseID("main", "fake")

	newPool := func(t *testing.T) (*dbkit.SQLPool, *sql.DB, *fakeDriver) {
		d := &fakeDriver{}
		db := sql.OpenDB(fakeConnector{d: d})
		pool := dbkit.NewSQLPool(db)
		t.Cleanup(func() {
			assert.NoError(t, pool.Close())
		})

		return pool, db, d
	}

	t.Run("acquire and release", func(t *testing.T) {
		pool, db, d := newPool(t)

		conn, err := dbkit.ConnectAs[*sql.Conn](ctx, pool.Acquire(ctx, sqlDB))
		require.NoError(t, err)
		assert.Equal(t, 1, db.Stats().InUse)

		err = pool.Release(ctx, sqlDB, conn)
		require.NoError(t, err)

		stats := db.Stats()
		assert.Equal(t, 0, stats.InUse)
		assert.Equal(t, 1, stats.Idle)

		// The released connection is reused.
		conn, err = dbkit.ConnectAs[*sql.Conn](ctx, pool.Acquire(ctx, sqlDB))
		require.NoError(t, err)
		require.NoError(t, pool.Release(ctx, sqlDB, conn))
		assert.Equal(t, int32(1), d.opened.Load())
	})

	t.Run("acquire with canceled context", func(t *testing.T) {
		pool, _, _ := newPool(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := pool.Acquire(ctx, sqlDB).Result(context.Background())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("release unexpected type", func(t *testing.T) {
		pool, _, _ := newPool(t)

		err := pool.Release(ctx, sqlDB, 1234)
		assert.EqualError(t, err, "release main (fake): unexpected connection type int")
	})

	t.Run("with cache", func(t *testing.T) {
		pool, db, _ := newPool(t)
		cache := dbkit.NewConnectionCache(dbkit.NewPools().Register(sqlDB, pool), nil)

		conn1, err := dbkit.ConnectAs[*sql.Conn](ctx, cache.Connect(ctx, sqlDB))
		require.NoError(t, err)
		conn2, err := dbkit.ConnectAs[*sql.Conn](ctx, cache.Connect(ctx, sqlDB))
		require.NoError(t, err)

		assert.Same(t, conn1, conn2)
		assert.Equal(t, 1, db.Stats().InUse)

		require.NoError(t, cache.ReleaseAll(ctx))
		assert.Equal(t, 0, db.Stats().InUse)
	})
}
