package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sectrean/scope-kit/dbkit"
)

// PoolMock is a mock implementation of dbkit.Pool.
type PoolMock struct {
	mock.Mock
}

var _ dbkit.Pool = (*PoolMock)(nil)

// NewPoolMock creates a new PoolMock and asserts its expectations when the test finishes.
func NewPoolMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *PoolMock {
	m := &PoolMock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Acquire provides a mock function with given fields: ctx, id
func (m *PoolMock) Acquire(ctx context.Context, id dbkit.DatabaseID) *dbkit.Future[dbkit.Conn] {
	ret := m.Called(ctx, id)

	if fn, ok := ret.Get(0).(func(context.Context, dbkit.DatabaseID) *dbkit.Future[dbkit.Conn]); ok {
		return fn(ctx, id)
	}

	f, _ := ret.Get(0).(*dbkit.Future[dbkit.Conn])
	return f
}

// Release provides a mock function with given fields: ctx, id, conn
func (m *PoolMock) Release(ctx context.Context, id dbkit.DatabaseID, conn dbkit.Conn) error {
	ret := m.Called(ctx, id, conn)
	return ret.Error(0)
}
