package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyUsageRecord = "quota:usage:%s"

	// records older than a day are stale anyway; keep one spare day for timezone skew
	usageRecordTTL = 48 * time.Hour
)

// KEYS[1] record hash, ARGV[1] today, ARGV[2] limit (-1 = none), ARGV[3] ttl seconds
// returns {incremented (0|1), count}
var incrementWithCeilingScript = redis.NewScript(`
local date = redis.call('HGET', KEYS[1], 'date')
local count = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
if date ~= ARGV[1] then
	count = 0
end
local limit = tonumber(ARGV[2])
if limit >= 0 and count >= limit then
	return {0, count}
end
count = count + 1
redis.call('HSET', KEYS[1], 'date', ARGV[1], 'count', count)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[3]))
return {1, count}
`)

// implements Store using Redis hashes
type RedisStore struct {
	client *redis.Client
}

// creates a new Redis-backed usage store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (UsageRecord, bool, error) {
	fields, err := s.client.HGetAll(ctx, fmt.Sprintf(keyUsageRecord, key)).Result()
	if err != nil {
		return UsageRecord{}, false, fmt.Errorf("failed to read usage from redis: %w", err)
	}

	if len(fields) == 0 {
		return UsageRecord{}, false, nil
	}

	count, err := strconv.Atoi(fields["count"])
	if err != nil {
		return UsageRecord{}, false, fmt.Errorf("corrupt usage count %q: %w", fields["count"], err)
	}

	return UsageRecord{Date: fields["date"], Count: count}, true, nil
}

func (s *RedisStore) IncrementWithCeiling(ctx context.Context, key, today string, limit int) (UsageRecord, error) {
	res, err := incrementWithCeilingScript.Run(
		ctx,
		s.client,
		[]string{fmt.Sprintf(keyUsageRecord, key)},
		today,
		limit,
		int(usageRecordTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return UsageRecord{}, fmt.Errorf("failed to increment usage in redis: %w", err)
	}

	if len(res) != 2 {
		return UsageRecord{}, fmt.Errorf("unexpected increment script result: %v", res)
	}

	rec := UsageRecord{Date: today, Count: int(res[1])}
	if res[0] == 0 {
		return rec, ErrQuotaExceeded
	}

	return rec, nil
}
