package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startNATS(t *testing.T) string {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1})
	require.NoError(t, err, "embedded nats")
	srv.Start()
	t.Cleanup(srv.Shutdown)
	require.True(t, srv.ReadyForConnections(5*time.Second), "embedded nats not ready")
	return srv.ClientURL()
}

func TestNATSPublisher_Publish(t *testing.T) {
	url := startNATS(t)

	pub, err := NewNATSPublisher(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe(TopicConfigChanged, ch)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Unsubscribe() })
	require.NoError(t, nc.Flush())

	evt := ConfigChanged{EventID: "evt-7", Operation: OpRestore, FieldID: "phone", Persisted: true}
	require.NoError(t, pub.Publish(context.Background(), TopicConfigChanged, evt))
	require.NoError(t, pub.conn.Flush())

	select {
	case msg := <-ch:
		var got ConfigChanged
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, "phone", got.FieldID)
		assert.Equal(t, OpRestore, got.Operation)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config change")
	}
}

func TestNATSPublisher_CanceledContext(t *testing.T) {
	pub, err := NewNATSPublisher(startNATS(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Publish(ctx, TopicConfigChanged, ConfigChanged{}), context.Canceled)
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", nats.Timeout(200*time.Millisecond))
	assert.ErrorContains(t, err, "connecting to NATS")
}
