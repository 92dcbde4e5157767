package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/webchat/config"
)

const keyPrefix = "ratelimit:"

// slideScript trims expired events, checks the quota and records the new
// event in one atomic step. Only admitted requests are recorded, so
// rejected traffic cannot extend a client's lockout.
//
// Returns {allowed, count, oldest score (ms)}.
var slideScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, 0, now - window)
local count = redis.call("ZCARD", key)
local allowed = 0
if count < limit then
  redis.call("ZADD", key, now, member)
  redis.call("PEXPIRE", key, window)
  count = count + 1
  allowed = 1
end
local oldest = now
local first = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
if first[2] then
  oldest = tonumber(first[2])
end
return {allowed, count, oldest}
`)

// RedisStore keeps one sorted set of admission timestamps per key.
type RedisStore struct {
	rdb redis.UniversalClient
}

// NewRedisStore creates a RedisStore
func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Take implements Store via the sliding-window script.
func (s *RedisStore) Take(ctx context.Context, key string, window time.Duration, limit int, now time.Time) (bool, int64, time.Time, error) {
	res, err := slideScript.Run(ctx, s.rdb, []string{keyPrefix + key},
		now.UnixMilli(),
		window.Milliseconds(),
		limit,
		strconv.FormatInt(now.UnixNano(), 10),
	).Int64Slice()
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("sliding window script: %w", err)
	}
	if len(res) != 3 {
		return false, 0, time.Time{}, fmt.Errorf("sliding window script: got %d values, want 3", len(res))
	}
	return res[0] == 1, res[1], time.UnixMilli(res[2]), nil
}

// Conn dials the shared quota store and verifies it responds.
func Conn(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		DialTimeout: cfg.DialTimeout,
		Password:    cfg.Password,
		DB:          cfg.DB,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	if pong != "PONG" {
		return nil, fmt.Errorf("expected PONG, got %s", pong)
	}
	return client, nil
}
