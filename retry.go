package sqlrepo

import (
	"context"
	"fmt"
)

// DefaultRetries is the number of attempts used by generated code.
const DefaultRetries = 3

// Retry calls fn until it succeeds, returns an error other than an
// optimistic lock failure, or attempts run out. The last error is
// returned in the latter case.
func Retry(ctx context.Context, attempts int, fn func(context.Context) error) error {
	_, err := RetryValue(ctx, attempts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RetryValue is like Retry for functions returning a value.
func RetryValue[T any](ctx context.Context, attempts int, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		return zero, fmt.Errorf("sqlrepo: retry attempts must be greater than 0, got %d", attempts)
	}
	var last error
	for range attempts {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !IsOptimisticLock(err) {
			return zero, err
		}
		last = err
	}
	return zero, last
}
