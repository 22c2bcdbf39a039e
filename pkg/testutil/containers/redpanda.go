//go:build integration

package containers

import (
	"context"
	"testing"

	tcredpanda "github.com/testcontainers/testcontainers-go/modules/redpanda"
)

// StartRedpanda runs a single-node Kafka-compatible broker and returns its
// seed address.
func StartRedpanda(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcredpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.2.4",
		tcredpanda.WithAutoCreateTopics(),
	)
	if err != nil {
		t.Fatalf("start redpanda container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	broker, err := container.KafkaSeedBroker(ctx)
	if err != nil {
		t.Fatalf("redpanda seed broker: %v", err)
	}
	return broker
}
