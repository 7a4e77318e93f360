package sqlrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrepo"
)

func TestRetry(t *testing.T) {
	ctx := context.Background()
	lockErr := sqlrepo.NewOptimisticLockError("r.save", 1, 0)

	t.Run("succeeds after lock failures", func(t *testing.T) {
		calls := 0
		err := sqlrepo.Retry(ctx, 3, func(context.Context) error {
			calls++
			if calls < 3 {
				return lockErr
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns the last lock failure", func(t *testing.T) {
		calls := 0
		err := sqlrepo.Retry(ctx, 2, func(context.Context) error {
			calls++
			return lockErr
		})
		assert.ErrorIs(t, err, sqlrepo.ErrOptimisticLock)
		assert.Equal(t, 2, calls)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := sqlrepo.Retry(ctx, 5, func(context.Context) error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("attempts must be positive", func(t *testing.T) {
		err := sqlrepo.Retry(ctx, 0, func(context.Context) error { return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "greater than 0")
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := sqlrepo.Retry(cctx, 3, func(context.Context) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("value", func(t *testing.T) {
		v, err := sqlrepo.RetryValue(ctx, sqlrepo.DefaultRetries, func(context.Context) (int, error) { return 7, nil })
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})
}
