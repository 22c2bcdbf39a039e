package cooldown

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "smartbin:cooldown:"

// RedisIndex stores one hash per identity: field = dustbin id, value = unix
// nanoseconds of the last credited scan. The hash expires one window after
// its latest write, by which point none of its entries can block a scan.
type RedisIndex struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisIndex builds an index whose keys outlive window. A zero window
// disables expiry.
func NewRedisIndex(client redis.UniversalClient, window time.Duration) *RedisIndex {
	return &RedisIndex{client: client, ttl: window}
}

func key(identityID string) string {
	return keyPrefix + identityID
}

func (x *RedisIndex) Get(ctx context.Context, identityID, dustbinID string) (time.Time, bool, error) {
	raw, err := x.client.HGet(ctx, key(identityID), dustbinID).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis cooldown get: %w", err)
	}
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis cooldown decode %q: %w", raw, err)
	}
	return time.Unix(0, nanos).UTC(), true, nil
}

func (x *RedisIndex) Set(ctx context.Context, identityID, dustbinID string, at time.Time) error {
	k := key(identityID)
	_, err := x.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, dustbinID, strconv.FormatInt(at.UnixNano(), 10))
		if x.ttl > 0 {
			pipe.Expire(ctx, k, x.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis cooldown set: %w", err)
	}
	return nil
}

func (x *RedisIndex) Delete(ctx context.Context, identityID, dustbinID string) error {
	if err := x.client.HDel(ctx, key(identityID), dustbinID).Err(); err != nil {
		return fmt.Errorf("redis cooldown delete: %w", err)
	}
	return nil
}

func (x *RedisIndex) DeleteByIdentity(ctx context.Context, identityID string) error {
	if err := x.client.Del(ctx, key(identityID)).Err(); err != nil {
		return fmt.Errorf("redis cooldown purge: %w", err)
	}
	return nil
}
