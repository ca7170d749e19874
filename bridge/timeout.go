package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/marcus-crane/mediabridge/metrics"
)

// DefaultTimeout matches the budget the OS media APIs are given by default.
// Session manager acquisition and each metadata call get their own budget.
const DefaultTimeout = 30 * time.Second

type result[T any] struct {
	val T
	err error
}

// WithTimeout runs fn with its own budget and returns no later than the budget,
// even if fn never looks at its context. A call that is still running when the
// budget expires is abandoned and its eventual result discarded.
//
// Cancellation of the parent context is reported as the parent's error so
// callers can tell a gone client apart from a slow OS.
func WithTimeout[T any](ctx context.Context, op string, budget time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if budget <= 0 {
		budget = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	// Buffered so an abandoned call can still deliver and exit.
	done := make(chan result[T], 1)
	start := time.Now()
	go func() {
		val, err := fn(callCtx)
		done <- result[T]{val: val, err: err}
	}()

	var zero T
	select {
	case res := <-done:
		metrics.DownstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == nil {
			metrics.DownstreamTimeouts.WithLabelValues(op).Inc()
			return zero, &TimeoutError{Op: op, Budget: budget}
		}
		return res.val, res.err
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		metrics.DownstreamTimeouts.WithLabelValues(op).Inc()
		return zero, &TimeoutError{Op: op, Budget: budget}
	}
}

func withTimeoutErr(ctx context.Context, op string, budget time.Duration, fn func(context.Context) error) error {
	_, err := WithTimeout(ctx, op, budget, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
