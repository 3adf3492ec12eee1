// Package app assembles the backup credential authority from configuration: stores,
// audit pipeline, rate limiter, enrollment oracle, credential backend and both
// transports.
package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	backupconfig "backupauth/internal/backup/config"
	"backupauth/internal/backup/grpcapi"
	"backupauth/internal/backup/handler"
	backupmetrics "backupauth/internal/backup/metrics"
	"backupauth/internal/backup/ports"
	"backupauth/internal/backup/service"
	accountstore "backupauth/internal/backup/store/account"
	receiptstore "backupauth/internal/backup/store/receipt"
	"backupauth/internal/enrollment"
	jwttoken "backupauth/internal/jwt_token"
	"backupauth/internal/platform/config"
	"backupauth/internal/platform/health"
	"backupauth/internal/platform/tracer"
	rlconfig "backupauth/internal/ratelimit/config"
	rlmetrics "backupauth/internal/ratelimit/metrics"
	rlmodels "backupauth/internal/ratelimit/models"
	"backupauth/internal/ratelimit/service/limiter"
	"backupauth/internal/ratelimit/store/bucket"
	"backupauth/internal/workers/cleanup"
	"backupauth/internal/zkops"
	"backupauth/pkg/platform/audit"
	"backupauth/pkg/platform/audit/publisher"
	auditkafka "backupauth/pkg/platform/audit/store/kafka"
	auditmemory "backupauth/pkg/platform/audit/store/memory"
	auditpostgres "backupauth/pkg/platform/audit/store/postgres"
	"backupauth/pkg/platform/audit/store/resilient"
	"backupauth/pkg/platform/circuit"
	"backupauth/pkg/platform/middleware/auth"
	"backupauth/pkg/platform/middleware/metadata"
	"backupauth/pkg/platform/middleware/request"
	"backupauth/pkg/platform/middleware/requesttime"
	"backupauth/pkg/platform/validation"
)

const (
	requestTimeout  = 30 * time.Second
	auditBufferSize = 1024
)

// App is the assembled process. New registers Prometheus collectors on the default
// registry, so it is called once per process.
type App struct {
	HTTP    http.Handler
	GRPC    *grpc.Server
	Cleanup *cleanup.Service
	Service *service.Service

	infra     *infrastructure
	publisher *publisher.Publisher
	logger    *slog.Logger
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	infra, err := connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{infra: infra, logger: logger}
	if err := a.build(cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(cfg config.Config) error {
	logger := a.logger
	otel := tracer.NewOTel()

	a.publisher = publisher.NewPublisher(
		a.auditStore(cfg),
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithPublisherLogger(logger),
		publisher.WithMetrics(publisher.NewMetrics()),
	)
	auditLogger := audit.NewLogger(logger, a.publisher)

	limits := rlconfig.DefaultConfig()
	if err := limits.ApplyOverrides(map[rlmodels.Descriptor]string{
		rlmodels.DescriptorSetBackupID:   cfg.RateLimits.SetBackupID,
		rlmodels.DescriptorRedeemReceipt: cfg.RateLimits.RedeemReceipt,
	}); err != nil {
		return fmt.Errorf("rate limits: %w", err)
	}
	rateMetrics := rlmetrics.New()
	buckets, bucketPurger := a.bucketStore()
	lim, err := limiter.New(buckets,
		limiter.WithLogger(logger),
		limiter.WithAuditLogger(auditLogger),
		limiter.WithConfig(limits),
		limiter.WithMetrics(rateMetrics),
		limiter.WithTracer(otel),
	)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	oracle, err := enrollmentOracle(cfg.Enrollment, logger)
	if err != nil {
		return fmt.Errorf("enrollment: %w", err)
	}

	issuer, verifier, err := credentialBackend(cfg.Credentials, logger)
	if err != nil {
		return fmt.Errorf("credential backend: %w", err)
	}

	ledger, ledgerPurger := a.receiptLedger()
	a.Service, err = service.New(service.Dependencies{
		Accounts:    a.accountStore(),
		Ledger:      ledger,
		Limiter:     lim,
		Enrollment:  oracle,
		Credentials: issuer,
		Receipts:    verifier,
	},
		service.WithLogger(logger),
		service.WithAuditLogger(auditLogger),
		service.WithMetrics(backupmetrics.New()),
		service.WithTracer(otel),
	)
	if err != nil {
		return fmt.Errorf("backup service: %w", err)
	}

	var targets []cleanup.Target
	if bucketPurger != nil {
		targets = append(targets, cleanup.Target{Name: "rate_limit_events", Purger: bucketPurger})
	}
	if ledgerPurger != nil {
		targets = append(targets, cleanup.Target{Name: "receipt_redemptions", Purger: ledgerPurger})
	}
	a.Cleanup = cleanup.New(targets,
		cleanup.WithLogger(logger),
		cleanup.WithMetrics(rateMetrics),
	)

	jwtService := jwttoken.NewJWTService(
		cfg.Server.JWTSigningKey,
		cfg.Server.JWTIssuer,
		cfg.Server.JWTAudience,
		cfg.Server.TokenTTL,
	)
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	a.HTTP = a.router(cfg, validator)
	a.GRPC = grpc.NewServer(grpc.ChainUnaryInterceptor(
		grpcapi.ErrorInterceptor(logger),
		grpcapi.RequestTimeInterceptor(),
		grpcapi.AuthInterceptor(validator, logger),
	))
	grpcapi.RegisterBackupAuthServer(a.GRPC, grpcapi.NewServer(a.Service, logger))
	return nil
}

func (a *App) router(cfg config.Config, validator auth.JWTValidator) http.Handler {
	logger := a.logger

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(metadata.Config{TrustedProxies: cfg.Server.TrustedProxies}).Handler)
	r.Use(request.Logger(logger))
	r.Use(request.Timeout(requestTimeout))
	r.Use(request.LatencyMiddleware(request.NewMetrics()))
	r.Use(requesttime.Middleware)

	checks := health.New(cfg.Environment)
	a.infra.registerHealthChecks(checks)
	checks.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(auth.RequireAuth(validator, logger))
		handler.New(a.Service, logger).Register(r)
	})
	return r
}

// Close flushes the audit publisher and releases connections.
func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	a.infra.close(a.logger)
}

// auditStore writes to Kafka when configured, falling back to the local sink while
// the brokers keep failing.
func (a *App) auditStore(cfg config.Config) audit.Store {
	var local audit.Store = auditmemory.NewInMemoryStore()
	if a.infra.db != nil {
		local = auditpostgres.New(a.infra.db.DB())
	}
	if a.infra.producer == nil {
		return local
	}
	return resilient.New(
		auditkafka.New(a.infra.producer, cfg.Kafka.AuditTopic),
		local,
		resilient.WithLogger(a.logger),
		resilient.WithBreaker(circuit.New("audit_kafka", circuit.WithStateGauge(circuit.NewStateGauge("audit_kafka")))),
	)
}

func (a *App) accountStore() ports.AccountStore {
	if a.infra.db != nil {
		return accountstore.NewPostgres(a.infra.db.DB())
	}
	return accountstore.NewInMemoryStore()
}

// receiptLedger prefers Redis, whose keys expire on their own, so only the other
// backends return a purger.
func (a *App) receiptLedger() (ports.ReceiptLedger, cleanup.Purger) {
	switch {
	case a.infra.redis != nil:
		return receiptstore.NewRedis(a.infra.redis.Client), nil
	case a.infra.db != nil:
		ledger := receiptstore.NewPostgres(a.infra.db.DB())
		return ledger, ledger
	default:
		ledger := receiptstore.NewInMemoryLedger()
		return ledger, ledger
	}
}

func (a *App) bucketStore() (limiter.BucketStore, cleanup.Purger) {
	switch {
	case a.infra.redis != nil:
		return bucket.NewRedis(a.infra.redis.Client), nil
	case a.infra.db != nil:
		store := bucket.NewPostgres(a.infra.db.DB())
		return store, store
	default:
		store := bucket.NewInMemoryBucketStore()
		return store, store
	}
}

func enrollmentOracle(cfg config.EnrollmentConfig, logger *slog.Logger) (*enrollment.Oracle, error) {
	backup, err := enrollment.ParseAccounts(cfg.Backup)
	if err != nil {
		return nil, fmt.Errorf("ENROLL_BACKUP: %w", err)
	}
	media, err := enrollment.ParseAccounts(cfg.BackupMedia)
	if err != nil {
		return nil, fmt.Errorf("ENROLL_BACKUP_MEDIA: %w", err)
	}
	return enrollment.New(map[string]enrollment.Rule{
		backupconfig.ExperimentBackup:      {Accounts: backup, Percent: cfg.BackupPercent},
		backupconfig.ExperimentBackupMedia: {Accounts: media, Percent: cfg.BackupMediaPercent},
	}, enrollment.WithLogger(logger))
}

// credentialBackend builds the issuer and receipt verifier. Without a configured
// secret the keys are random and do not survive a restart.
func credentialBackend(cfg config.CredentialConfig, logger *slog.Logger) (*zkops.Issuer, *zkops.ReceiptVerifier, error) {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, nil, fmt.Errorf("generate credential secret: %w", err)
		}
		logger.Warn("CREDENTIAL_SECRET not set, using ephemeral credential keys")
	}

	credentialKey, err := zkops.DeriveCredentialKey(secret)
	if err != nil {
		return nil, nil, err
	}

	var receiptIssuer ed25519.PublicKey
	if cfg.ReceiptIssuerPublicKey != "" {
		receiptIssuer, err = zkops.ParsePublicKey(cfg.ReceiptIssuerPublicKey)
		if err != nil {
			return nil, nil, fmt.Errorf("RECEIPT_ISSUER_PUBLIC_KEY: %w", err)
		}
	} else {
		receiptKey, err := zkops.DeriveReceiptKey(secret)
		if err != nil {
			return nil, nil, err
		}
		receiptIssuer = zkops.PublicKeyOf(receiptKey)
	}

	issuer := zkops.NewIssuer(credentialKey)
	logger.Info("credential backend ready",
		"credential_public_key", zkops.EncodePublicKey(issuer.PublicKey()),
		"receipt_issuer_public_key", zkops.EncodePublicKey(receiptIssuer),
	)
	return issuer, zkops.NewReceiptVerifier(receiptIssuer), nil
}
