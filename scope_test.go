package di_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	di "github.com/sectrean/scope-kit"
	"github.com/sectrean/scope-kit/internal/testtypes"
)

func Test_Resolve(t *testing.T) {
	t.Run("nil service", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(func() testtypes.Logger { return nil }),
		)
		require.NoError(t, err)

		got, err := di.Resolve[testtypes.Logger](context.Background(), c)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("error returns zero value", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		got, err := di.Resolve[*testtypes.RequestTracker](context.Background(), c)
		assert.ErrorIs(t, err, di.ErrServiceNotRegistered)
		assert.Nil(t, got)
	})
}

func Test_MustResolve(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger),
		)
		require.NoError(t, err)

		ctx := context.Background()
		got := di.MustResolve[testtypes.Logger](ctx, c)
		assert.Equal(t, "console", got.Name())
	})

	t.Run("WithTag", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithService(testtypes.NewConsoleLogger, di.WithTag("tag")),
			di.WithService(func() testtypes.Logger {
				assert.Fail(t, "should not be called")
				return nil
			}),
		)
		require.NoError(t, err)

		ctx := context.Background()
		got := di.MustResolve[testtypes.Logger](ctx, c, di.WithTag("tag"))
		assert.Equal(t, "console", got.Name())
	})

	t.Run("error", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		ctx := context.Background()
		assert.PanicsWithError(t,
			"resolve testtypes.Logger: service not registered",
			func() {
				di.MustResolve[testtypes.Logger](ctx, c)
			},
		)
	})
}
