package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bloggenie-server/internal/domain"
)

// usageKeyTTL outlives the longest calendar day in any timezone.
const usageKeyTTL = 48 * time.Hour

// incrementScript compares and increments in one round trip. It returns
// {allowed, count}.
var incrementScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return {0, current}
end
current = redis.call('INCR', KEYS[1])
redis.call('EXPIRE', KEYS[1], ARGV[2])
return {1, current}
`)

// RedisUsageRepository counts daily usage in Redis, one key per user per day,
// which makes the limit hold across server instances.
type RedisUsageRepository struct {
	client *redis.Client
	logger domain.Logger
}

func NewRedisUsageRepository(client *redis.Client, logger domain.Logger) *RedisUsageRepository {
	return &RedisUsageRepository{client: client, logger: logger}
}

// NewRedisClient parses url, connects and pings.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func usageKey(userID, dateKey string) string {
	return "usage:" + userID + ":" + dateKey
}

func (r *RedisUsageRepository) Increment(ctx context.Context, userID, dateKey string, limit int, token string) (int, bool, error) {
	res, err := incrementScript.Run(ctx, r.client, []string{usageKey(userID, dateKey)}, limit, int(usageKeyTTL.Seconds())).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment usage: %w", err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("unexpected usage script result %v", res)
	}
	return int(res[1]), res[0] == 1, nil
}

func (r *RedisUsageRepository) Peek(ctx context.Context, userID, dateKey string, token string) (int, error) {
	n, err := r.client.Get(ctx, usageKey(userID, dateKey)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read usage: %w", err)
	}
	return n, nil
}
