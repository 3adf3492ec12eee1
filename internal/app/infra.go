package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"backupauth/internal/platform/config"
	"backupauth/internal/platform/database"
	"backupauth/internal/platform/health"
	"backupauth/internal/platform/kafka"
	"backupauth/internal/platform/kafka/producer"
	"backupauth/internal/platform/redis"
	"backupauth/migrations"
)

// infrastructure holds the optional external connections. Each field is nil when
// the matching setting is empty.
type infrastructure struct {
	db       *database.Pool
	redis    *redis.Client
	producer *producer.Producer
}

func connect(cfg config.Config, logger *slog.Logger) (*infrastructure, error) {
	infra := &infrastructure{}

	db, err := database.New(context.Background(), cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	infra.db = db
	if db != nil {
		prometheus.MustRegister(db.Collector())
		if cfg.Database.Migrate {
			applied, err := migrations.Up(context.Background(), db.DB())
			if err != nil {
				infra.close(logger)
				return nil, fmt.Errorf("migrate database: %w", err)
			}
			logger.Info("database migrated", "applied", applied)
		}
	}

	rdb, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		infra.close(logger)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	infra.redis = rdb
	if rdb != nil {
		prometheus.MustRegister(rdb.Collector())
	}

	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(kafka.DefaultProducerConfig(cfg.Kafka.Brokers), logger)
		if err != nil {
			infra.close(logger)
			return nil, fmt.Errorf("connect kafka: %w", err)
		}
		infra.producer = p
	}

	logger.Info("infrastructure ready",
		"postgres", infra.db != nil,
		"redis", infra.redis != nil,
		"kafka", infra.producer != nil,
	)
	return infra, nil
}

// registerHealthChecks adds readiness probes for the configured backends. Kafka is
// optional because audit events fall back to the local sink.
func (i *infrastructure) registerHealthChecks(h *health.Handler) {
	if i.db != nil {
		h.RegisterCheck("postgres", i.db.Health)
	}
	if i.redis != nil {
		h.RegisterCheck("redis", i.redis.Health)
	}
	if i.producer != nil {
		h.RegisterOptionalCheck("kafka", kafka.NewHealthChecker(i.producer.Admin()).Check)
	}
}

func (i *infrastructure) close(logger *slog.Logger) {
	var errs []error
	if i.producer != nil {
		errs = append(errs, i.producer.Close())
	}
	if i.redis != nil {
		errs = append(errs, i.redis.Close())
	}
	if i.db != nil {
		errs = append(errs, i.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error("closing infrastructure", "error", err)
	}
}
