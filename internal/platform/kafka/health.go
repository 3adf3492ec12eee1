package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
)

// BrokerLister is the slice of *kadm.Client the health check needs.
type BrokerLister interface {
	ListBrokers(ctx context.Context) (kadm.BrokerDetails, error)
}

// HealthChecker asks the cluster for its broker list over the producer's own
// connection, so a passing check means the audit sink can reach metadata.
type HealthChecker struct {
	admin   BrokerLister
	timeout time.Duration
}

func NewHealthChecker(admin BrokerLister) *HealthChecker {
	return &HealthChecker{admin: admin, timeout: 3 * time.Second}
}

func (h *HealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	brokers, err := h.admin.ListBrokers(ctx)
	if err != nil {
		return fmt.Errorf("list kafka brokers: %w", err)
	}
	if len(brokers) == 0 {
		return errors.New("kafka cluster reported no brokers")
	}
	return nil
}

func (h *HealthChecker) Name() string {
	return "kafka"
}
