//go:build integration

package containers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaContainer is a single-node Redpanda broker speaking the Kafka protocol.
type KafkaContainer struct {
	Container testcontainers.Container
	Brokers   string
}

func startKafka(ctx context.Context) (*KafkaContainer, error) {
	c, err := kafka.Run(ctx, "redpandadata/redpanda:latest", kafka.WithClusterID("backupauth-it"))
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	brokers, err := c.Brokers(ctx)
	if err == nil && len(brokers) == 0 {
		err = errors.New("no brokers advertised")
	}
	if err != nil {
		_ = c.Terminate(context.Background())
		return nil, fmt.Errorf("brokers: %w", err)
	}
	return &KafkaContainer{Container: c, Brokers: brokers[0]}, nil
}

// Admin returns an admin client closed with the test.
func (k *KafkaContainer) Admin(t *testing.T) *kadm.Client {
	t.Helper()
	client, err := kgo.NewClient(kgo.SeedBrokers(k.Brokers))
	if err != nil {
		t.Fatalf("failed to create kafka client: %v", err)
	}
	t.Cleanup(client.Close)
	return kadm.NewClient(client)
}

// EnsureTopic creates a one-partition topic, tolerating one that already exists.
func (k *KafkaContainer) EnsureTopic(ctx context.Context, t *testing.T, topic string) {
	t.Helper()
	resp, err := k.Admin(t).CreateTopic(ctx, 1, 1, nil, topic)
	if err == nil {
		err = resp.Err
	}
	if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		t.Fatalf("failed to create topic %s: %v", topic, err)
	}
}

// FirstMatch reads topic from the start and returns the first record match
// accepts, or an error once timeout passes.
func (k *KafkaContainer) FirstMatch(ctx context.Context, topic string, timeout time.Duration, match func(*kgo.Record) bool) (*kgo.Record, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(k.Brokers),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		fetches := client.PollFetches(ctx)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("no matching record on %s within %s", topic, timeout)
		}
		iter := fetches.RecordIter()
		for !iter.Done() {
			if rec := iter.Next(); match(rec) {
				return rec, nil
			}
		}
	}
}
