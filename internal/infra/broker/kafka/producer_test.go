package kafka

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigPassesValidation(t *testing.T) {
	cfg := NewConfig("staybook-test")
	require.NoError(t, cfg.Validate())
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	assert.True(t, cfg.Producer.Idempotent)
}

func TestPublishSendsKeyValueAndSortedHeaders(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "wallet.events.v1", msg.Topic)
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "tenant-1", string(key))
		require.Len(t, msg.Headers, 2)
		assert.Equal(t, "content-type", string(msg.Headers[0].Key))
		assert.Equal(t, "tenant_id", string(msg.Headers[1].Key))
		return nil
	})
	p := &Producer{sync: mock}

	err := p.Publish(context.Background(), "wallet.events.v1", "tenant-1", []byte(`{}`), map[string]string{
		"tenant_id":    "tenant-1",
		"content-type": "application/json",
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	p := &Producer{sync: mock}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Publish(ctx, "t", "k", nil, nil), context.Canceled)
	require.NoError(t, mock.Close())
}
