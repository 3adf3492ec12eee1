package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full process configuration, read once at startup.
type Config struct {
	Environment string
	LogLevel    string
	Server      Server
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Credentials CredentialConfig
	RateLimits  RateLimitOverrides
	Enrollment  EnrollmentConfig
}

// Server captures listener and bearer-token configuration.
type Server struct {
	HTTPAddr        string
	GRPCAddr        string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration
	// TrustedProxies may set X-Forwarded-For; empty trusts no proxy.
	TrustedProxies []netip.Prefix
}

// DatabaseConfig selects Postgres-backed stores when URL is set; in-memory otherwise.
// Migrate applies the embedded schema at startup.
type DatabaseConfig struct {
	URL             string
	Migrate         bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig selects the Redis receipt ledger and bucket store when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the Kafka audit sink when Brokers is set.
type KafkaConfig struct {
	Brokers    string
	AuditTopic string
}

// CredentialConfig holds the development credential backend keys. Empty values make
// the server derive throwaway keys at startup.
type CredentialConfig struct {
	Secret                 string
	ReceiptIssuerPublicKey string
}

// RateLimitOverrides are raw "count/duration" strings, parsed by the ratelimit config.
type RateLimitOverrides struct {
	SetBackupID   string
	RedeemReceipt string
}

// EnrollmentConfig drives the config-backed enrollment oracle.
type EnrollmentConfig struct {
	Backup             []string
	BackupMedia        []string
	BackupPercent      int
	BackupMediaPercent int
}

var (
	TokenTTL        = 15 * time.Minute
	ShutdownTimeout = 10 * time.Second
)

// FromEnv builds the Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	cfg := Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: Server{
			HTTPAddr:        getEnv("BACKUP_HTTP_ADDR", ":8080"),
			GRPCAddr:        getEnv("BACKUP_GRPC_ADDR", ":9090"),
			JWTSigningKey:   getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:       getEnv("JWT_ISSUER", "backupauth"),
			JWTAudience:     getEnv("JWT_AUDIENCE", "backupauth-api"),
			TokenTTL:        TokenTTL,
			ShutdownTimeout: ShutdownTimeout,
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     20,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:    os.Getenv("KAFKA_BROKERS"),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "backup.audit"),
		},
		Credentials: CredentialConfig{
			Secret:                 os.Getenv("CREDENTIAL_SECRET"),
			ReceiptIssuerPublicKey: os.Getenv("RECEIPT_ISSUER_PUBLIC_KEY"),
		},
		RateLimits: RateLimitOverrides{
			SetBackupID:   os.Getenv("RATE_LIMIT_SET_BACKUP_ID"),
			RedeemReceipt: os.Getenv("RATE_LIMIT_REDEEM_RECEIPT"),
		},
		Enrollment: EnrollmentConfig{
			Backup:      splitList(os.Getenv("ENROLL_BACKUP")),
			BackupMedia: splitList(os.Getenv("ENROLL_BACKUP_MEDIA")),
		},
	}

	var err error
	if cfg.Server.TokenTTL, err = durationEnv("TOKEN_TTL", TokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.Server.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Database.Migrate, err = boolEnv("DATABASE_MIGRATE"); err != nil {
		return Config{}, err
	}
	if cfg.Database.MaxOpenConns, err = intEnv("DATABASE_MAX_OPEN_CONNS", 25); err != nil {
		return Config{}, err
	}
	if cfg.Server.TrustedProxies, err = prefixListEnv("TRUSTED_PROXIES"); err != nil {
		return Config{}, err
	}
	if cfg.Enrollment.BackupPercent, err = percentEnv("ENROLL_BACKUP_PERCENT"); err != nil {
		return Config{}, err
	}
	if cfg.Enrollment.BackupMediaPercent, err = percentEnv("ENROLL_BACKUP_MEDIA_PERCENT"); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}

func percentEnv(key string) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, nil
	}
	p, err := strconv.Atoi(raw)
	if err != nil || p < 0 || p > 100 {
		return 0, fmt.Errorf("%s must be an integer in [0,100], got %q", key, raw)
	}
	return p, nil
}

func prefixListEnv(key string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, raw := range splitList(os.Getenv(key)) {
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		prefixes = append(prefixes, prefix)
	}
	return prefixes, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
