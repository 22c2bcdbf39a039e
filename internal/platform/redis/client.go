// Package redis opens the shared go-redis connection used by the cooldown index.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"smartbin/internal/platform/config"
)

// Client is a connected go-redis client. Depending on configuration it talks
// to a single node, a cluster or a sentinel-managed primary.
type Client struct {
	redis.UniversalClient
}

// New connects and pings. It returns nil, nil when Redis is not configured.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	opts, err := universalOptions(cfg)
	if err != nil || opts == nil {
		return nil, err
	}

	client := redis.NewUniversalClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %v: %w", opts.Addrs, err)
	}
	return &Client{UniversalClient: client}, nil
}

func universalOptions(cfg config.RedisConfig) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{MasterName: cfg.MasterName}
	switch {
	case len(cfg.Addrs) > 0:
		opts.Addrs = cfg.Addrs
	case cfg.URL != "":
		single, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis URL: %w", err)
		}
		opts.Addrs = []string{single.Addr}
		opts.Username = single.Username
		opts.Password = single.Password
		opts.DB = single.DB
		opts.TLSConfig = single.TLSConfig
	default:
		return nil, nil
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	return opts, nil
}

// Health pings the server, or every shard in cluster mode.
func (c *Client) Health(ctx context.Context) error {
	if cluster, ok := c.UniversalClient.(*redis.ClusterClient); ok {
		return cluster.ForEachShard(ctx, func(ctx context.Context, shard *redis.Client) error {
			return shard.Ping(ctx).Err()
		})
	}
	return c.Ping(ctx).Err()
}
