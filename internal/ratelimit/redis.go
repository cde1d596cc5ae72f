package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims entries older than the window, then admits the
// request only if fewer than max remain. Scores are unix milliseconds.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= max then
	return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`)

// Redis shares the sliding window between instances through a sorted set
// per key.
type Redis struct {
	client redis.Scripter
	prefix string
	max    int
	window time.Duration
	now    func() time.Time
}

func NewRedis(client redis.Scripter, prefix string, max int, window time.Duration, opts ...Option) *Redis {
	o := buildOptions(opts)
	max, window = normalize(max, window)
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &Redis{client: client, prefix: prefix, max: max, window: window, now: o.now}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	now := r.now().UnixMilli()
	member := strconv.FormatInt(now, 10) + ":" + uuid.NewString()
	res, err := slidingWindow.Run(ctx, r.client, []string{r.prefix + key},
		now, r.window.Milliseconds(), r.max, member).Int()
	if err != nil {
		return false, fmt.Errorf("ratelimit: redis: %w", err)
	}
	return res == 1, nil
}
