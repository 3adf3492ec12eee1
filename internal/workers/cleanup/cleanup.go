// Package cleanup runs a periodic sweep that deletes records which can no longer
// affect a decision: rate limit charges outside their window and receipt
// redemptions whose receipt has expired.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"backupauth/internal/ratelimit/metrics"
	"backupauth/pkg/requestcontext"
)

// CleanupResult contains the results of a cleanup run.
type CleanupResult struct {
	Purged   map[string]int64 // rows or keys removed, by target name
	Duration time.Duration
}

// Purger removes expired records as of requestcontext.Now(ctx).
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Target names a Purger for logs and metrics.
type Target struct {
	Name   string
	Purger Purger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source used to pin each run.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

type Service struct {
	targets  []Target
	logger   *slog.Logger
	interval time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

func New(targets []Target, opts ...Option) *Service {
	service := &Service{
		targets:  targets,
		logger:   slog.Default(),
		interval: 15 * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Start runs RunOnce every interval until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			startTime := time.Now()
			res, err := s.RunOnce(ctx)
			duration := time.Since(startTime)

			if s.metrics != nil {
				s.metrics.ObserveCleanupDuration(duration.Seconds())
			}
			if err != nil {
				s.logger.Error("cleanup_failed",
					"error", err,
					"duration_ms", duration.Milliseconds(),
				)
				if s.metrics != nil {
					s.metrics.IncrementCleanupRuns("error")
				}
				continue
			}

			res.Duration = duration
			args := []any{"duration_ms", duration.Milliseconds()}
			for name, n := range res.Purged {
				args = append(args, name+"_purged", n)
			}
			s.logger.Info("cleanup_completed", args...)
			if s.metrics != nil {
				s.metrics.IncrementCleanupRuns("success")
			}

		case <-ctx.Done():
			s.logger.Info("cleanup worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce purges every target once. A failing target does not stop the others; the
// returned error joins every failure and the result is nil when any target failed.
func (s *Service) RunOnce(ctx context.Context) (*CleanupResult, error) {
	ctx = requestcontext.WithTime(ctx, s.now())

	res := &CleanupResult{Purged: make(map[string]int64, len(s.targets))}
	var errs []error
	for _, target := range s.targets {
		n, err := target.Purger.PurgeExpired(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("purge %s: %w", target.Name, err))
			continue
		}
		res.Purged[target.Name] = n
		if s.metrics != nil {
			s.metrics.IncrementCleanupPurged(target.Name, n)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return res, nil
}
