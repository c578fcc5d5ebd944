//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/redpanda"
)

// NewRedpandaContainer starts a single-node Kafka-compatible broker and
// returns its seed broker address.
func NewRedpandaContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	ctr, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.2.7")
	if err != nil {
		t.Fatalf("start redpanda: %v", err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	broker, err := ctr.KafkaSeedBroker(ctx)
	if err != nil {
		t.Fatalf("redpanda seed broker: %v", err)
	}
	return broker
}
