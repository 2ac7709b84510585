package protect

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a token bucket whose state lives in redis, keyed by client
// address. Bucket state is authoritative outside the process, so concurrent
// instances of the API share one budget per client.
type RedisLimiter struct {
	rdb      *redis.Client
	prefix   string
	capacity int
	refill   int
	interval time.Duration
}

// bucketScript refills and drains a bucket atomically. Returns 1 when a token
// was taken, 0 when the bucket is empty.
var bucketScript = redis.NewScript(`
local tokens, stamp
local bucket = redis.call('HMGET', KEYS[1], 'tokens', 'stamp')
local capacity = tonumber(ARGV[1])
local refill = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
if bucket[1] then
  tokens = tonumber(bucket[1])
  stamp = tonumber(bucket[2])
else
  tokens = capacity
  stamp = now
end
local elapsed = now - stamp
if elapsed >= interval then
  local refills = math.floor(elapsed / interval)
  tokens = math.min(capacity, tokens + refills * refill)
  stamp = stamp + refills * interval
end
local allowed = 0
if tokens > 0 then
  tokens = tokens - 1
  allowed = 1
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'stamp', stamp)
redis.call('EXPIRE', KEYS[1], interval * 3)
return allowed
`)

func NewRedisLimiter(rdb *redis.Client, prefix string, capacity, refill int, interval time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "protect:rate"
	}
	return &RedisLimiter{
		rdb:      rdb,
		prefix:   prefix,
		capacity: capacity,
		refill:   refill,
		interval: interval,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	res, err := bucketScript.Run(ctx, l.rdb,
		[]string{l.prefix + ":" + key},
		l.capacity, l.refill, int(l.interval.Seconds()), time.Now().Unix(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate bucket eval: %w", err)
	}
	return res == 1, nil
}
