package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsTicksUntilStopped(t *testing.T) {
	var ticks int64
	loop := NewLoop("test", 10*time.Millisecond, func(ctx context.Context) (interface{}, error) {
		atomic.AddInt64(&ticks, 1)
		return nil, nil
	}, nil)

	loop.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	loop.Stop()

	count := atomic.LoadInt64(&ticks)
	require.GreaterOrEqual(t, count, int64(2), "expected multiple ticks before stop")

	// No further ticks after Stop returns.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, count, atomic.LoadInt64(&ticks))
}

func TestLoopStopWithoutStartIsNoop(t *testing.T) {
	loop := NewLoop("idle", time.Second, func(ctx context.Context) (interface{}, error) {
		return nil, nil
	}, nil)
	loop.Stop()
}

func TestLoopSerializesTicks(t *testing.T) {
	var inFlight int64
	var overlapped int64
	loop := NewLoop("serial", time.Millisecond, func(ctx context.Context) (interface{}, error) {
		if atomic.AddInt64(&inFlight, 1) > 1 {
			atomic.AddInt64(&overlapped, 1)
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return nil, nil
	}, nil)

	loop.Start(context.Background())
	time.Sleep(40 * time.Millisecond)
	loop.Stop()

	assert.Zero(t, atomic.LoadInt64(&overlapped), "ticks must never overlap")
}
