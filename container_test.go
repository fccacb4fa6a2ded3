package di_test

import (
	"context"
	stderrors "errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	di "github.com/sectrean/scope-kit"
	"github.com/sectrean/scope-kit/internal/testtypes"
	"github.com/sectrean/scope-kit/internal/testutils"
)

func Test_NewContainer(t *testing.T) {
	t.Run("no options", func(t *testing.T) {
		c, err := di.NewContainer()
		assert.NotNil(t, c)
		assert.NoError(t, err)
		assert.Nil(t, c.Parent())
	})

	t.Run("with service", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger),
		)
		require.NoError(t, err)

		assert.True(t, c.Contains(testtypes.TypeLogger))
		assert.False(t, c.Contains(testtypes.TypeUserStore))
	})

	t.Run("with invalid service kind", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(1234),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "new container: with service int: invalid service type")
	})

	t.Run("with nil value", func(t *testing.T) {
		var logger testtypes.Logger
		c, err := di.NewContainer(
			di.WithService(logger),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "new container: with service: funcOrValue is nil")
	})

	t.Run("only options", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(di.Singleton, di.WithTag("tag")),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "new container: with service di.Lifetime: unexpected ServiceOption as funcOrValue")
	})

	t.Run("func without results", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(func() {}),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "new container: with service func(): function must return Service or (Service, error)")
	})

	t.Run("func alias not assignable", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger, di.As[*testtypes.ConsoleLogger]()),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "new container: with service func() testtypes.Logger: "+
			"as *testtypes.ConsoleLogger: type testtypes.Logger not assignable to *testtypes.ConsoleLogger")
	})

	t.Run("value alias not assignable", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(&testtypes.ConsoleLogger{}, di.As[testtypes.UserStore]()),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "new container: with service *testtypes.ConsoleLogger: "+
			"as testtypes.UserStore: type *testtypes.ConsoleLogger not assignable to testtypes.UserStore")
	})

	t.Run("with tagged not found", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger,
				di.WithTagged[testtypes.UserStore]("tag"),
			),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "new container: with service func() testtypes.Logger: "+
			"with tagged testtypes.UserStore: argument not found")
	})

	t.Run("with close func not assignable", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger,
				di.WithCloseFunc(func(context.Context, *testtypes.ConsoleLogger) error { return nil }),
			),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "new container: with service func() testtypes.Logger: "+
			"with close func: service type testtypes.Logger is not assignable to *testtypes.ConsoleLogger")
	})

	t.Run("multiple errors", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(1234),
			di.WithService("string"),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "new container: with service int: invalid service type\n"+
			"with service string: invalid service type")
	})

	t.Run("with module", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithModule(di.Module{
				di.WithService(testtypes.NewConsoleLogger),
				di.WithModule(di.Module{
					di.WithService(testtypes.NewUserStore),
				}),
			}),
		)
		require.NoError(t, err)

		ctx := context.Background()
		store, err := di.Resolve[testtypes.UserStore](ctx, c)
		require.NoError(t, err)
		assert.Equal(t, "console", store.Logger().Name())
	})
}

func Test_WithDependencyValidation(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithDependencyValidation(),
			di.WithService(testtypes.NewUserStore),
			di.WithService(testtypes.NewConsoleLogger),
		)
		assert.NotNil(t, c)
		assert.NoError(t, err)
	})

	t.Run("missing dependency", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewUserStore),
			di.WithDependencyValidation(),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.EqualError(t, err, "new container: with dependency validation: "+
			"service testtypes.UserStore: dependency testtypes.Logger: service not registered")
	})

	t.Run("dependency cycle", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(func(testtypes.UserStore) testtypes.Logger { return nil }),
			di.WithService(testtypes.NewUserStore),
			di.WithDependencyValidation(),
		)
		testutils.LogError(t, err)

		assert.Nil(t, c)
		assert.ErrorContains(t, err, "dependency testtypes.Logger: dependency cycle detected")
	})

	t.Run("context and scope dependencies", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(func(context.Context, di.Scope) testtypes.Logger { return nil }),
			di.WithDependencyValidation(),
		)
		assert.NotNil(t, c)
		assert.NoError(t, err)
	})

	t.Run("scoped service on root is skipped", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewUserStore, di.Scoped),
			di.WithDependencyValidation(),
		)
		require.NoError(t, err)

		scope, err := c.NewScope(
			di.WithService(testtypes.NewTestLogger),
			di.WithDependencyValidation(),
		)
		assert.NotNil(t, scope)
		assert.NoError(t, err)
	})

	t.Run("scoped service missing dependency in child", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewUserStore, di.Scoped),
		)
		require.NoError(t, err)

		scope, err := c.NewScope(
			di.WithDependencyValidation(),
		)
		testutils.LogError(t, err)

		assert.Nil(t, scope)
		assert.EqualError(t, err, "new scope: with dependency validation: "+
			"service testtypes.UserStore: dependency testtypes.Logger: service not registered")
	})
}

func Test_Container_NewScope(t *testing.T) {
	t.Run("parent", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		scope, err := c.NewScope()
		require.NoError(t, err)

		assert.Same(t, c, scope.Parent())
	})

	t.Run("inherits parent services", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger),
		)
		require.NoError(t, err)

		scope, err := c.NewScope(
			di.WithService(testtypes.NewUserStore),
		)
		require.NoError(t, err)

		ctx := context.Background()
		store, err := di.Resolve[testtypes.UserStore](ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, "console", store.Logger().Name())

		assert.False(t, c.Contains(testtypes.TypeUserStore))
	})

	t.Run("siblings are isolated", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		scope1, err := c.NewScope(
			di.WithService(testtypes.NewConsoleLogger),
		)
		require.NoError(t, err)

		scope2, err := c.NewScope()
		require.NoError(t, err)

		assert.True(t, scope1.Contains(testtypes.TypeLogger))
		assert.False(t, scope2.Contains(testtypes.TypeLogger))
	})

	t.Run("option error", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		scope, err := c.NewScope(
			di.WithService(1234),
		)
		testutils.LogError(t, err)

		assert.Nil(t, scope)
		assert.EqualError(t, err, "new scope: with service int: invalid service type")
	})

	t.Run("container closed", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		err = c.Close(context.Background())
		require.NoError(t, err)

		scope, err := c.NewScope()
		testutils.LogError(t, err)

		assert.Nil(t, scope)
		assert.ErrorIs(t, err, di.ErrContainerClosed)
		assert.EqualError(t, err, "new scope: container closed")
	})
}

func Test_Container_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("not registered", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		got, err := c.Resolve(ctx, testtypes.TypeLogger)
		testutils.LogError(t, err)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, di.ErrServiceNotRegistered)
		assert.EqualError(t, err, "resolve testtypes.Logger: service not registered")
	})

	t.Run("dependency not registered", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewUserStore),
		)
		require.NoError(t, err)

		got, err := c.Resolve(ctx, testtypes.TypeUserStore)
		testutils.LogError(t, err)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, di.ErrServiceNotRegistered)
		assert.EqualError(t, err, "resolve testtypes.UserStore: dependency testtypes.Logger: service not registered")
	})

	t.Run("child override", func(t *testing.T) {
		parent, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger),
		)
		require.NoError(t, err)

		child, err := parent.NewScope(
			di.WithService(testtypes.NewTestLogger),
		)
		require.NoError(t, err)

		fromChild, err := di.Resolve[testtypes.Logger](ctx, child)
		require.NoError(t, err)
		assert.IsType(t, &testtypes.TestLogger{}, fromChild)

		fromParent, err := di.Resolve[testtypes.Logger](ctx, parent)
		require.NoError(t, err)
		assert.IsType(t, &testtypes.ConsoleLogger{}, fromParent)

		_, err = di.Resolve[testtypes.UserStore](ctx, child)
		assert.ErrorIs(t, err, di.ErrServiceNotRegistered)
	})

	t.Run("last registration wins", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger),
			di.WithService(testtypes.NewTestLogger),
		)
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.Logger](ctx, c)
		require.NoError(t, err)
		assert.Equal(t, "test", got.Name())
	})

	t.Run("value with alias", func(t *testing.T) {
		logger := &testtypes.ConsoleLogger{}
		c, err := di.NewContainer(
			di.WithService(logger, di.As[testtypes.Logger]()),
		)
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.Logger](ctx, c)
		require.NoError(t, err)
		assert.Same(t, logger, got)

		byType, err := c.Resolve(ctx, testtypes.TypeConsoleLogger)
		require.NoError(t, err)
		assert.Same(t, logger, byType)
	})

	t.Run("with tag", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger, di.WithTag("console")),
			di.WithService(testtypes.NewTestLogger),
		)
		require.NoError(t, err)

		tagged, err := di.Resolve[testtypes.Logger](ctx, c, di.WithTag("console"))
		require.NoError(t, err)
		assert.Equal(t, "console", tagged.Name())

		untagged, err := di.Resolve[testtypes.Logger](ctx, c)
		require.NoError(t, err)
		assert.Equal(t, "test", untagged.Name())

		assert.False(t, c.Contains(testtypes.TypeLogger, di.WithTag("missing")))

		_, err = c.Resolve(ctx, testtypes.TypeLogger, di.WithTag("missing"))
		assert.EqualError(t, err, "resolve testtypes.Logger (Tag missing): service not registered")
	})

	t.Run("with tagged dependency", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger, di.WithTag("console")),
			di.WithService(testtypes.NewTestLogger),
			di.WithService(testtypes.NewUserStore, di.WithTagged[testtypes.Logger]("console")),
		)
		require.NoError(t, err)

		store, err := di.Resolve[testtypes.UserStore](ctx, c)
		require.NoError(t, err)
		assert.Equal(t, "console", store.Logger().Name())
	})

	t.Run("constructor error", func(t *testing.T) {
		calls := 0
		c, err := di.NewContainer(
			di.WithService(func() (testtypes.Logger, error) {
				calls++
				return nil, stderrors.New("logger failed")
			}),
		)
		require.NoError(t, err)

		_, err = c.Resolve(ctx, testtypes.TypeLogger)
		testutils.LogError(t, err)
		assert.EqualError(t, err, "resolve testtypes.Logger: logger failed")

		_, err = c.Resolve(ctx, testtypes.TypeLogger)
		assert.EqualError(t, err, "resolve testtypes.Logger: logger failed")
		assert.Equal(t, 1, calls)
	})

	t.Run("dependency cycle", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(func(testtypes.UserStore) testtypes.Logger { return nil }),
			di.WithService(testtypes.NewUserStore),
		)
		require.NoError(t, err)

		_, err = c.Resolve(ctx, testtypes.TypeLogger)
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, di.ErrDependencyCycle)
		assert.EqualError(t, err, "resolve testtypes.Logger: dependency testtypes.UserStore: "+
			"dependency testtypes.Logger: dependency cycle detected")
	})

	t.Run("context dependency", func(t *testing.T) {
		type ctxKey struct{}
		ctx := context.WithValue(context.Background(), ctxKey{}, "value")

		c, err := di.NewContainer(
			di.WithService(func(ctx context.Context) *testtypes.RequestTracker {
				assert.Equal(t, "value", ctx.Value(ctxKey{}))
				return &testtypes.RequestTracker{}
			}),
		)
		require.NoError(t, err)

		_, err = c.Resolve(ctx, testtypes.TypeRequestTracker)
		assert.NoError(t, err)
	})

	t.Run("scope dependency", func(t *testing.T) {
		var injected di.Scope
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger),
			di.WithService(func(ctx context.Context, s di.Scope) *testtypes.RequestTracker {
				_, err := s.Resolve(ctx, testtypes.TypeLogger)
				assert.ErrorContains(t, err, "resolve not supported on di.Scope while resolving *testtypes.RequestTracker")

				injected = s
				return &testtypes.RequestTracker{}
			}),
		)
		require.NoError(t, err)

		_, err = c.Resolve(ctx, testtypes.TypeRequestTracker)
		require.NoError(t, err)
		require.NotNil(t, injected)

		logger, err := di.Resolve[testtypes.Logger](ctx, injected)
		assert.NoError(t, err)
		assert.NotNil(t, logger)
		assert.True(t, injected.Contains(testtypes.TypeLogger))
	})

	t.Run("context canceled", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = c.Resolve(ctx, testtypes.TypeLogger)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("container closed", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger),
		)
		require.NoError(t, err)

		err = c.Close(ctx)
		require.NoError(t, err)

		_, err = c.Resolve(ctx, testtypes.TypeLogger)
		assert.ErrorIs(t, err, di.ErrContainerClosed)
		assert.EqualError(t, err, "resolve testtypes.Logger: container closed")
	})
}

func Test_Container_Resolve_Lifetimes(t *testing.T) {
	ctx := context.Background()

	newTracker := func(n *atomic.Int32) func() *testtypes.RequestTracker {
		return func() *testtypes.RequestTracker {
			return &testtypes.RequestTracker{ID: int(n.Add(1))}
		}
	}

	t.Run("singleton", func(t *testing.T) {
		var n atomic.Int32
		c, err := di.NewContainer(
			di.WithService(newTracker(&n)),
		)
		require.NoError(t, err)

		scope1, err := c.NewScope()
		require.NoError(t, err)
		scope2, err := c.NewScope()
		require.NoError(t, err)

		got1, err := di.Resolve[*testtypes.RequestTracker](ctx, scope1)
		require.NoError(t, err)
		got2, err := di.Resolve[*testtypes.RequestTracker](ctx, scope2)
		require.NoError(t, err)
		got3, err := di.Resolve[*testtypes.RequestTracker](ctx, c)
		require.NoError(t, err)

		assert.Same(t, got1, got2)
		assert.Same(t, got1, got3)
		assert.Equal(t, int32(1), n.Load())

		// Closing a child scope does not close a singleton owned by the parent.
		require.NoError(t, scope1.Close(ctx))
		assert.Equal(t, 0, got1.Closes)

		require.NoError(t, c.Close(ctx))
		assert.Equal(t, 1, got1.Closes)
	})

	t.Run("transient", func(t *testing.T) {
		var n atomic.Int32
		c, err := di.NewContainer(
			di.WithService(newTracker(&n), di.Transient),
		)
		require.NoError(t, err)

		got1, err := di.Resolve[*testtypes.RequestTracker](ctx, c)
		require.NoError(t, err)
		got2, err := di.Resolve[*testtypes.RequestTracker](ctx, c)
		require.NoError(t, err)

		assert.NotSame(t, got1, got2)
		assert.Equal(t, int32(2), n.Load())

		require.NoError(t, c.Close(ctx))
		assert.Equal(t, 1, got1.Closes)
		assert.Equal(t, 1, got2.Closes)
	})

	t.Run("scoped", func(t *testing.T) {
		var n atomic.Int32
		c, err := di.NewContainer(
			di.WithService(newTracker(&n), di.Scoped),
		)
		require.NoError(t, err)

		scope1, err := c.NewScope()
		require.NoError(t, err)
		scope2, err := c.NewScope()
		require.NoError(t, err)

		got1, err := di.Resolve[*testtypes.RequestTracker](ctx, scope1)
		require.NoError(t, err)
		again, err := di.Resolve[*testtypes.RequestTracker](ctx, scope1)
		require.NoError(t, err)
		got2, err := di.Resolve[*testtypes.RequestTracker](ctx, scope2)
		require.NoError(t, err)

		assert.Same(t, got1, again)
		assert.NotSame(t, got1, got2)

		require.NoError(t, scope1.Close(ctx))
		assert.Equal(t, 1, got1.Closes)
		assert.Equal(t, 0, got2.Closes)
	})

	t.Run("scoped from root", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger, di.Scoped),
		)
		require.NoError(t, err)

		_, err = c.Resolve(ctx, testtypes.TypeLogger)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "resolve testtypes.Logger: scoped service must be resolved from a child scope")
	})

	t.Run("scoped dependency from child", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewUserStore, di.Scoped),
		)
		require.NoError(t, err)

		scope, err := c.NewScope(
			di.WithService(testtypes.NewTestLogger),
		)
		require.NoError(t, err)

		store, err := di.Resolve[testtypes.UserStore](ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, "test", store.Logger().Name())

		require.NoError(t, scope.Close(ctx))
		assert.True(t, store.(*testtypes.SQLUserStore).Closed)
	})

	t.Run("concurrent singleton", func(t *testing.T) {
		var n atomic.Int32
		c, err := di.NewContainer(
			di.WithService(newTracker(&n)),
		)
		require.NoError(t, err)

		results := make(chan *testtypes.RequestTracker, 100)
		testutils.RunParallel(100, func(int) {
			got, err := di.Resolve[*testtypes.RequestTracker](ctx, c)
			assert.NoError(t, err)
			results <- got
		})
		close(results)

		all := testutils.CollectChannel(results)
		require.Len(t, all, 100)
		for _, got := range all {
			assert.Same(t, all[0], got)
		}
		assert.Equal(t, int32(1), n.Load())
	})
}

func Test_Container_Resolve_ForRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("local registration wins", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger, di.Scoped),
		)
		require.NoError(t, err)

		scope, err := c.NewScope(
			di.WithService(testtypes.NewTestLogger),
		)
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.Logger](ctx, scope, di.ForRequest())
		require.NoError(t, err)
		assert.Equal(t, "test", got.Name())
	})

	t.Run("parent scoped beats grandparent singleton", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewTestLogger),
		)
		require.NoError(t, err)

		parent, err := c.NewScope(
			di.WithService(testtypes.NewConsoleLogger, di.Scoped),
		)
		require.NoError(t, err)

		scope, err := parent.NewScope()
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.Logger](ctx, scope, di.ForRequest())
		require.NoError(t, err)
		assert.Equal(t, "console", got.Name())
	})

	t.Run("prefers scoped registration in ancestors", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger, di.Scoped),
		)
		require.NoError(t, err)

		parent, err := c.NewScope(
			di.WithService(testtypes.NewTestLogger),
		)
		require.NoError(t, err)

		scope, err := parent.NewScope()
		require.NoError(t, err)

		forRequest, err := di.Resolve[testtypes.Logger](ctx, scope, di.ForRequest())
		require.NoError(t, err)
		assert.Equal(t, "console", forRequest.Name())

		nearest, err := di.Resolve[testtypes.Logger](ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, "test", nearest.Name())
	})

	t.Run("falls back to nearest", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger),
		)
		require.NoError(t, err)

		scope, err := c.NewScope(
			di.WithService(testtypes.NewTestLogger),
		)
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.Logger](ctx, scope, di.ForRequest())
		require.NoError(t, err)
		assert.Equal(t, "test", got.Name())
	})

	t.Run("contains", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		assert.False(t, c.Contains(testtypes.TypeLogger, di.ForRequest()))
	})
}

func Test_Container_Close(t *testing.T) {
	ctx := context.Background()

	t.Run("already closed", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		err = c.Close(ctx)
		require.NoError(t, err)

		err = c.Close(ctx)
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, di.ErrContainerClosed)
		assert.EqualError(t, err, "close: container closed")
	})

	t.Run("reverse order", func(t *testing.T) {
		var order []string
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger,
				di.WithCloseFunc(func(context.Context, testtypes.Logger) error {
					order = append(order, "logger")
					return nil
				}),
			),
			di.WithService(testtypes.NewUserStore,
				di.WithCloseFunc(func(context.Context, testtypes.UserStore) error {
					order = append(order, "store")
					return nil
				}),
			),
		)
		require.NoError(t, err)

		_, err = c.Resolve(ctx, testtypes.TypeUserStore)
		require.NoError(t, err)

		err = c.Close(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []string{"store", "logger"}, order)
	})

	t.Run("close signatures", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger),
			di.WithService(testtypes.NewUserStore),
			di.WithService(testtypes.NewAuditLog),
			di.WithService(func() *testtypes.RequestTracker { return &testtypes.RequestTracker{} }),
		)
		require.NoError(t, err)

		audit, err := di.Resolve[testtypes.AuditLog](ctx, c)
		require.NoError(t, err)
		tracker, err := di.Resolve[*testtypes.RequestTracker](ctx, c)
		require.NoError(t, err)

		err = c.Close(ctx)
		assert.NoError(t, err)

		store := audit.(*testtypes.MemoryAuditLog).Store.(*testtypes.SQLUserStore)
		assert.True(t, store.Closed)
		assert.Equal(t, 1, tracker.Closes)
	})

	t.Run("not resolved", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(func() *testtypes.RequestTracker {
				assert.Fail(t, "should not be called")
				return nil
			}),
		)
		require.NoError(t, err)

		err = c.Close(ctx)
		assert.NoError(t, err)
	})

	t.Run("value not closed", func(t *testing.T) {
		tracker := &testtypes.RequestTracker{}
		c, err := di.NewContainer(
			di.WithService(tracker),
		)
		require.NoError(t, err)

		err = c.Close(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 0, tracker.Closes)
	})

	t.Run("value with closer", func(t *testing.T) {
		tracker := &testtypes.RequestTracker{}
		c, err := di.NewContainer(
			di.WithService(tracker, di.WithCloser()),
		)
		require.NoError(t, err)

		_, err = c.Resolve(ctx, testtypes.TypeRequestTracker)
		require.NoError(t, err)

		err = c.Close(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, tracker.Closes)
	})

	t.Run("value with close func", func(t *testing.T) {
		closed := false
		c, err := di.NewContainer(
			di.WithService(&testtypes.ConsoleLogger{},
				di.WithCloseFunc(func(context.Context, *testtypes.ConsoleLogger) error {
					closed = true
					return nil
				}),
			),
		)
		require.NoError(t, err)

		err = c.Close(ctx)
		assert.NoError(t, err)
		assert.True(t, closed)
	})

	t.Run("ignore closer", func(t *testing.T) {
		var tracker *testtypes.RequestTracker
		c, err := di.NewContainer(
			di.WithService(func() *testtypes.RequestTracker {
				tracker = &testtypes.RequestTracker{}
				return tracker
			}, di.IgnoreCloser()),
		)
		require.NoError(t, err)

		_, err = c.Resolve(ctx, testtypes.TypeRequestTracker)
		require.NoError(t, err)

		err = c.Close(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 0, tracker.Closes)
	})

	t.Run("closer errors", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger,
				di.WithCloseFunc(func(context.Context, testtypes.Logger) error {
					return stderrors.New("logger close error")
				}),
			),
			di.WithService(testtypes.NewUserStore,
				di.WithCloseFunc(func(context.Context, testtypes.UserStore) error {
					return stderrors.New("store close error")
				}),
			),
		)
		require.NoError(t, err)

		_, err = c.Resolve(ctx, testtypes.TypeUserStore)
		require.NoError(t, err)

		err = c.Close(ctx)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "close: store close error\nlogger close error")
	})
}

func Test_Container_Contains(t *testing.T) {
	c, err := di.NewContainer(
		di.WithService(testtypes.NewConsoleLogger, di.As[any]()),
	)
	require.NoError(t, err)

	tests := []struct {
		name string
		t    reflect.Type
		opts []di.ResolveOption
		want bool
	}{
		{name: "registered", t: testtypes.TypeLogger, want: true},
		{name: "alias", t: reflect.TypeFor[any](), want: true},
		{name: "not registered", t: testtypes.TypeUserStore, want: false},
		{name: "with tag", t: testtypes.TypeLogger, opts: []di.ResolveOption{di.WithTag("tag")}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Contains(tt.t, tt.opts...))
		})
	}
}
