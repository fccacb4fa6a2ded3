// Package testpool provides an in-memory [dbkit.Pool] that records every call.
package testpool

import (
	"context"
	"sync"

	"github.com/sectrean/scope-kit/dbkit"
)

// Conn is the connection handed out by [Pool].
type Conn struct {
	ID int
	DB dbkit.DatabaseID
}

// Pool counts acquisitions and releases.
//
// By default Acquire completes immediately. With Hold set, acquisitions stay pending
// until [Pool.CompleteAll] is called.
type Pool struct {
	// Hold keeps acquisitions pending.
	Hold bool
	// AcquireErr fails every acquisition.
	AcquireErr error
	// ReleaseErr fails every release.
	ReleaseErr error

	mu       sync.Mutex
	next     int
	acquired []dbkit.DatabaseID
	released []*Conn
	pending  []func(dbkit.Conn, error)
	pendIDs  []dbkit.DatabaseID
}

var _ dbkit.Pool = (*Pool)(nil)

// Acquire records id and returns a new connection, a pending one with Hold, or AcquireErr.
func (p *Pool) Acquire(_ context.Context, id dbkit.DatabaseID) *dbkit.Future[dbkit.Conn] {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.acquired = append(p.acquired, id)

	if p.AcquireErr != nil {
		return dbkit.Failed[dbkit.Conn](p.AcquireErr)
	}

	if p.Hold {
		f, complete := dbkit.NewPromise[dbkit.Conn]()
		p.pending = append(p.pending, complete)
		p.pendIDs = append(p.pendIDs, id)
		return f
	}

	return dbkit.Resolved[dbkit.Conn](p.newConn(id))
}

func (p *Pool) newConn(id dbkit.DatabaseID) *Conn {
	p.next++
	return &Conn{ID: p.next, DB: id}
}

// CompleteAll completes the pending acquisitions with new connections.
func (p *Pool) CompleteAll() {
	p.mu.Lock()
	pending, ids := p.pending, p.pendIDs
	p.pending, p.pendIDs = nil, nil
	conns := make([]*Conn, len(ids))
	for i, id := range ids {
		conns[i] = p.newConn(id)
	}
	p.mu.Unlock()

	for i, complete := range pending {
		complete(conns[i], nil)
	}
}

// FailAll completes the pending acquisitions with err.
func (p *Pool) FailAll(err error) {
	p.mu.Lock()
	pending := p.pending
	p.pending, p.pendIDs = nil, nil
	p.mu.Unlock()

	for _, complete := range pending {
		complete(nil, err)
	}
}

// Release records conn and returns ReleaseErr.
func (p *Pool) Release(_ context.Context, _ dbkit.DatabaseID, conn dbkit.Conn) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := conn.(*Conn); ok {
		p.released = append(p.released, c)
	}

	return p.ReleaseErr
}

// Acquired returns the IDs passed to Acquire, in order.
func (p *Pool) Acquired() []dbkit.DatabaseID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]dbkit.DatabaseID(nil), p.acquired...)
}

// Released returns the connections passed to Release, in order.
func (p *Pool) Released() []*Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Conn(nil), p.released...)
}

// Calls returns the total number of Acquire and Release calls.
func (p *Pool) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.acquired) + len(p.released)
}
