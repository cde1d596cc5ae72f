// Package ratelimit implements per-key sliding-window request limits.
//
// Memory keeps its counters in process memory: they do not survive a
// restart and are not shared between instances. Redis keeps them in a
// shared sorted set and is the drop-in replacement when more than one
// instance serves traffic.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultMax    = 100
	DefaultWindow = time.Minute
)

// Limiter decides whether one more request for key fits in the window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func normalize(max int, window time.Duration) (int, time.Duration) {
	if max < 1 {
		max = DefaultMax
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return max, window
}
