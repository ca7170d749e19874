package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeout_BoundsCallThatIgnoresContext(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	start := time.Now()
	_, err := WithTimeout(context.Background(), "hang", 50*time.Millisecond, func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	var timeoutErr *TimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	assert.Equal(t, "hang", timeoutErr.Op)
	assert.Less(t, elapsed, time.Second)
}

func TestWithTimeout_ReturnsResult(t *testing.T) {
	t.Parallel()
	got, err := WithTimeout(context.Background(), "ok", time.Second, func(ctx context.Context) (string, error) {
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", got)
}

func TestWithTimeout_ParentCancellationIsNotATimeout(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithTimeout(ctx, "cancelled", time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestWithTimeout_CalleeDeadlineBecomesTimeout(t *testing.T) {
	t.Parallel()
	_, err := WithTimeout(context.Background(), "ctx_aware", 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestMillis(t *testing.T) {
	t.Parallel()
	fiveSeconds := 5 * time.Second
	var nilDuration *time.Duration
	length := types.Microseconds(200_000_000)

	cases := []struct {
		name string
		in   any
		want int64
	}{
		{"nil", nil, 0},
		{"duration", 5 * time.Second, 5000},
		{"duration pointer", &fiveSeconds, 5000},
		{"nil duration pointer", nilDuration, 0},
		{"negative duration", -3 * time.Second, 0},
		{"microseconds", length, 200000},
		{"microseconds pointer", &length, 200000},
		{"negative microseconds", types.Microseconds(-1), 0},
		{"string", "00:03:20", 0},
		{"bare int", 5000, 0},
		{"struct", struct{}{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Millis(tc.in))
		})
	}
}
