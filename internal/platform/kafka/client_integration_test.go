//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"

	"smartbin/internal/platform/config"
	"smartbin/pkg/testutil/containers"
)

func TestEnsureTopic_Idempotent(t *testing.T) {
	broker := containers.StartRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const topic = "smartbin.audit.topic-it"
	cfg := config.KafkaConfig{Brokers: []string{broker}, AuditTopic: topic}

	first, err := New(ctx, cfg)
	require.NoError(t, err)
	defer first.Close()

	second, err := New(ctx, cfg)
	require.NoError(t, err, "an existing topic is not an error")
	defer second.Close()

	require.NoError(t, EnsureTopic(ctx, first, topic))

	topics, err := kadm.NewClient(first).ListTopics(ctx, topic)
	require.NoError(t, err)
	assert.True(t, topics.Has(topic))
}
