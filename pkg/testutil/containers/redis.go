//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// Redis is a throwaway Redis instance with a connected client.
type Redis struct {
	URL    string
	Client *redis.Client
}

// StartRedis runs redis:7-alpine and tears it down with the test.
func StartRedis(t *testing.T) *Redis {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis connection string: %v", err)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis URL: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
	return &Redis{URL: url, Client: client}
}

// FlushAll isolates tests sharing one container.
func (r *Redis) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
