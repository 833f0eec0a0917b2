package quota

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() }) //nolint:errcheck,gosec // test cleanup

	return NewRedisStore(client), mr
}

func TestRedisStore_CeilingHoldsAtLimit(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	for i := 1; i <= 5; i++ {
		rec, err := store.IncrementWithCeiling(ctx, "anon:device-1", "2024-01-02", 5)
		require.NoError(t, err)
		assert.Equal(t, i, rec.Count)
	}

	rec, err := store.IncrementWithCeiling(ctx, "anon:device-1", "2024-01-02", 5)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 5, rec.Count)

	stored, ok, err := store.Get(ctx, "anon:device-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, UsageRecord{Date: "2024-01-02", Count: 5}, stored, "refused increment must not touch the record")
}

func TestRedisStore_DayRolloverResetsCount(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	for range 5 {
		_, err := store.IncrementWithCeiling(ctx, "user:u1", "2024-01-02", 5)
		require.NoError(t, err)
	}

	rec, err := store.IncrementWithCeiling(ctx, "user:u1", "2024-01-03", 5)
	require.NoError(t, err)
	assert.Equal(t, UsageRecord{Date: "2024-01-03", Count: 1}, rec)

	stored, _, err := store.Get(ctx, "user:u1")
	require.NoError(t, err)
	assert.Equal(t, UsageRecord{Date: "2024-01-03", Count: 1}, stored)
}

func TestRedisStore_UnlimitedNeverRefuses(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	var rec UsageRecord
	var err error
	for range 12 {
		rec, err = store.IncrementWithCeiling(ctx, "user:premium", "2024-01-02", -1)
		require.NoError(t, err)
	}

	assert.Equal(t, 12, rec.Count)
}

func TestRedisStore_RecordExpires(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	_, err := store.IncrementWithCeiling(ctx, "anon:device-2", "2024-01-02", 5)
	require.NoError(t, err)

	assert.Equal(t, usageRecordTTL, mr.TTL("quota:usage:anon:device-2"))

	mr.FastForward(usageRecordTTL)

	_, ok, err := store.Get(ctx, "anon:device-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := newTestRedisStore(t)

	_, ok, err := store.Get(context.Background(), "anon:nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ConcurrentIncrementsNeverExceedCap(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	var wg sync.WaitGroup
	var granted atomic.Int32

	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.IncrementWithCeiling(ctx, "anon:race", "2024-01-02", 5); err == nil {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), granted.Load())

	stored, _, err := store.Get(ctx, "anon:race")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Count)
}
