package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"smartbin/internal/platform/config"
)

// New connects a producer client and makes sure the audit topic exists.
// Returns nil, nil when no brokers are configured.
func New(ctx context.Context, cfg config.KafkaConfig) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.AuditTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	if err := EnsureTopic(ctx, client, cfg.AuditTopic); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// EnsureTopic creates topic with broker defaults; an existing topic is fine.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	resp, err := kadm.NewClient(client).CreateTopic(ctx, -1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create kafka topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create kafka topic %s: %w", topic, resp.Err)
	}
	return nil
}
