package producer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backupauth/internal/platform/kafka"
)

func TestNew_RequiresBrokers(t *testing.T) {
	_, err := New(kafka.ProducerConfig{}, nil)
	require.ErrorContains(t, err, "brokers not configured")
}

func TestToRecord(t *testing.T) {
	rec := toRecord(&Message{
		Topic:   "backup.audit",
		Key:     []byte("k"),
		Value:   []byte("v"),
		Headers: map[string]string{"action": "backup_id_committed"},
	})
	assert.Equal(t, "backup.audit", rec.Topic)
	assert.Equal(t, []byte("k"), rec.Key)
	require.Len(t, rec.Headers, 1)
	assert.Equal(t, "action", rec.Headers[0].Key)
	assert.Equal(t, []byte("backup_id_committed"), rec.Headers[0].Value)
}

func TestProduceAfterClose(t *testing.T) {
	// kgo does not dial until the first request, so no broker is needed.
	p, err := New(kafka.DefaultProducerConfig("127.0.0.1:1"), nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	err = p.Produce(context.Background(), &Message{Topic: "backup.audit"})
	assert.ErrorIs(t, err, ErrClosed)
}
