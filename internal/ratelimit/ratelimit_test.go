package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClock() *clock { return &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)} }

func exerciseWindow(t *testing.T, l Limiter, clk *clock) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, ok, "request %d", i)
		clk.Advance(10 * time.Second)
	}
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "fourth request inside the window")

	ok, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	// The first hit (t=0) leaves the window at t=60s; we are at t=30s.
	clk.Advance(30*time.Second - time.Millisecond)
	ok, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "window has not slid yet")

	clk.Advance(time.Millisecond)
	ok, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "oldest hit aged out")
}

func TestMemorySlidingWindow(t *testing.T) {
	t.Parallel()
	clk := newClock()
	exerciseWindow(t, NewMemory(3, time.Minute, WithClock(clk.Now)), clk)
}

func TestRedisSlidingWindow(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clk := newClock()
	exerciseWindow(t, NewRedis(client, "test:", 3, time.Minute, WithClock(clk.Now)), clk)
}

func TestMemoryConcurrentCallersNeverExceedMax(t *testing.T) {
	t.Parallel()
	l := NewMemory(100, time.Minute)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 250; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow(context.Background(), "1.2.3.4"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 100, allowed.Load())
}

func TestMemoryEvictsIdleKeys(t *testing.T) {
	t.Parallel()
	clk := newClock()
	l := NewMemory(5, time.Minute, WithClock(clk.Now))

	for _, ip := range []string{"a", "b", "c"} {
		_, _ = l.Allow(context.Background(), ip)
	}
	assert.Equal(t, 3, l.Len())

	clk.Advance(2 * time.Minute)
	_, _ = l.Allow(context.Background(), "d")
	assert.Equal(t, 1, l.Len())
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	l := NewMemory(0, 0)
	assert.Equal(t, DefaultMax, l.max)
	assert.Equal(t, DefaultWindow, l.window)
}
