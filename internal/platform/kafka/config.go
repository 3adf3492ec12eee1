// Package kafka holds the franz-go client settings shared by the audit producer
// and the broker health check.
package kafka

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Acks names how many replicas must confirm a write.
type Acks string

const (
	AcksNone   Acks = "0"
	AcksLeader Acks = "1"
	AcksAll    Acks = "all"
)

// ProducerConfig holds the producer's client options.
type ProducerConfig struct {
	Brokers         []string
	ClientID        string
	Acks            Acks
	Retries         int
	Linger          time.Duration
	DeliveryTimeout time.Duration
}

// DefaultProducerConfig takes a comma-separated broker list. Audit records are
// acknowledged by every in-sync replica and compressed with zstd.
func DefaultProducerConfig(brokers string) ProducerConfig {
	return ProducerConfig{
		Brokers:         ParseBrokers(brokers),
		ClientID:        "backupauth",
		Acks:            AcksAll,
		Retries:         3,
		Linger:          5 * time.Millisecond,
		DeliveryTimeout: 30 * time.Second,
	}
}

// ParseBrokers splits a comma-separated list, dropping blanks.
func ParseBrokers(raw string) []string {
	var out []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c ProducerConfig) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka brokers not configured")
	}
	switch c.Acks {
	case "", AcksNone, AcksLeader, AcksAll:
	default:
		return fmt.Errorf("unknown kafka acks %q", c.Acks)
	}
	if c.Retries < 0 {
		return fmt.Errorf("kafka retries must be >= 0, got %d", c.Retries)
	}
	return nil
}

// ClientOptions translates the config into franz-go options.
func (c ProducerConfig) ClientOptions() []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(c.Brokers...),
		kgo.ProducerBatchCompression(kgo.ZstdCompression(), kgo.NoCompression()),
		kgo.AllowAutoTopicCreation(),
	}
	if c.ClientID != "" {
		opts = append(opts, kgo.ClientID(c.ClientID))
	}
	switch c.Acks {
	case AcksNone:
		opts = append(opts, kgo.RequiredAcks(kgo.NoAck()), kgo.DisableIdempotentWrite())
	case AcksLeader:
		opts = append(opts, kgo.RequiredAcks(kgo.LeaderAck()), kgo.DisableIdempotentWrite())
	default:
		opts = append(opts, kgo.RequiredAcks(kgo.AllISRAcks()))
	}
	if c.Retries > 0 {
		opts = append(opts, kgo.RecordRetries(c.Retries))
	}
	if c.Linger > 0 {
		opts = append(opts, kgo.ProducerLinger(c.Linger))
	}
	if c.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(c.DeliveryTimeout))
	}
	return opts
}
