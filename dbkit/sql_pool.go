package dbkit

import (
	"context"
	"database/sql"

	"github.com/sectrean/scope-kit/internal/errors"
)

// SQLPool serves connections from a [*sql.DB] connection pool.
//
// Acquired connections are [*sql.Conn] values. Releasing one returns it to the
// [*sql.DB] pool instead of closing the underlying driver connection.
type SQLPool struct {
	db *sql.DB
}

var _ Pool = (*SQLPool)(nil)

// NewSQLPool returns a [Pool] backed by db.
func NewSQLPool(db *sql.DB) *SQLPool {
	return &SQLPool{db: db}
}

// Acquire gets a connection from the pool on a new goroutine.
func (p *SQLPool) Acquire(ctx context.Context, _ DatabaseID) *Future[Conn] {
	return Go(func() (Conn, error) {
		conn, err := p.db.Conn(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	})
}

// Release returns conn to the pool.
func (p *SQLPool) Release(_ context.Context, id DatabaseID, conn Conn) error {
	sqlConn, ok := conn.(*sql.Conn)
	if !ok {
		return errors.Errorf("release %s: unexpected connection type %T", id, conn)
	}

	return sqlConn.Close()
}

// Close closes the underlying [*sql.DB].
func (p *SQLPool) Close() error {
	return p.db.Close()
}
