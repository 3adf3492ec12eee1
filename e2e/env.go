package e2e

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/cloudflare/circl/sign/ed25519"

	"backupauth/internal/app"
	backupconfig "backupauth/internal/backup/config"
	"backupauth/internal/backup/models"
	jwttoken "backupauth/internal/jwt_token"
	"backupauth/internal/platform/config"
	"backupauth/internal/platform/logger"
	"backupauth/internal/zkops"
	id "backupauth/pkg/domain"
)

const (
	e2eSecret       = "e2e-credential-secret"
	poolSize        = 64
	setBackupIDRate = "3/24h"
)

// environment is one in-process server shared by every scenario. Scenarios draw
// fresh accounts from the enrollment pools so they never share state.
type environment struct {
	baseURL  string
	server   *httptest.Server
	app      *app.App
	jwt      *jwttoken.JWTService
	credPub  ed25519.PublicKey
	receipts *zkops.ReceiptIssuer

	mu    sync.Mutex
	pools map[string][]id.AccountID
}

func startEnvironment() (*environment, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Database.URL = ""
	cfg.Redis.URL = ""
	cfg.Kafka.Brokers = ""
	cfg.Credentials.Secret = e2eSecret
	cfg.Credentials.ReceiptIssuerPublicKey = ""
	cfg.RateLimits.SetBackupID = setBackupIDRate
	cfg.Enrollment.BackupPercent = 0
	cfg.Enrollment.BackupMediaPercent = 0

	env := &environment{pools: map[string][]id.AccountID{}}
	for _, experiment := range []string{backupconfig.ExperimentBackup, backupconfig.ExperimentBackupMedia} {
		accounts := make([]id.AccountID, poolSize)
		raw := make([]string, poolSize)
		for i := range accounts {
			accounts[i] = id.NewAccountID()
			raw[i] = accounts[i].String()
		}
		env.pools[experiment] = accounts
		if experiment == backupconfig.ExperimentBackup {
			cfg.Enrollment.Backup = raw
		} else {
			cfg.Enrollment.BackupMedia = raw
		}
	}

	env.app, err = app.New(cfg, logger.New("error"))
	if err != nil {
		return nil, fmt.Errorf("start app: %w", err)
	}
	env.server = httptest.NewServer(env.app.HTTP)
	env.baseURL = env.server.URL

	env.jwt = jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience, cfg.Server.TokenTTL)
	credKey, err := zkops.DeriveCredentialKey([]byte(e2eSecret))
	if err != nil {
		return nil, err
	}
	env.credPub = zkops.PublicKeyOf(credKey)
	receiptKey, err := zkops.DeriveReceiptKey([]byte(e2eSecret))
	if err != nil {
		return nil, err
	}
	env.receipts = zkops.NewReceiptIssuer(receiptKey)
	return env, nil
}

func (e *environment) stop() {
	e.server.Close()
	e.app.Close()
}

// takeAccount pops an account enrolled in experiment, or mints an unenrolled one
// when experiment is empty.
func (e *environment) takeAccount(experiment string) (id.AccountID, error) {
	if experiment == "" {
		return id.NewAccountID(), nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	pool, ok := e.pools[experiment]
	if !ok {
		return id.AccountID{}, fmt.Errorf("unknown experiment %q", experiment)
	}
	if len(pool) == 0 {
		return id.AccountID{}, fmt.Errorf("enrollment pool for %q exhausted", experiment)
	}
	e.pools[experiment] = pool[1:]
	return pool[0], nil
}

// UseAccount switches the scenario to a fresh account and a bearer token for it.
func (tc *TestContext) UseAccount(experiment string) error {
	accountID, err := tc.env.takeAccount(experiment)
	if err != nil {
		return err
	}
	token, err := tc.env.jwt.GenerateAccessToken(context.Background(), accountID, 1)
	if err != nil {
		return err
	}
	tc.AccountID = accountID
	tc.AccessToken = token
	return nil
}

// PresentReceipt signs a receipt with the issuer key the server trusts.
func (tc *TestContext) PresentReceipt(receipt models.Receipt) ([]byte, error) {
	return tc.env.receipts.Present(receipt)
}

func (tc *TestContext) VerifyCredential(raw []byte) (zkops.IssuedCredential, error) {
	return zkops.VerifyCredential(tc.env.credPub, raw)
}

func (tc *TestContext) Today() time.Time {
	return models.StartOfDay(time.Now())
}
