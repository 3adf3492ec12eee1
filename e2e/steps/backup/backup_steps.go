package backup

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"backupauth/internal/backup/models"
	"backupauth/internal/zkops"
	id "backupauth/pkg/domain"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	PUT(path string, body interface{}) error
	POST(path string, body interface{}) error
	AuthenticatedGET(path string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	UseAccount(experiment string) error
	PresentReceipt(receipt models.Receipt) ([]byte, error)
	VerifyCredential(raw []byte) (zkops.IssuedCredential, error)
	Today() time.Time
	GetLastPresentation() string
	SetLastPresentation(presentation string)
}

// RegisterSteps registers backup-id, credential and receipt step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &backupSteps{tc: tc}

	// Account steps
	ctx.Step(`^I am an account enrolled in "([^"]*)"$`, steps.accountEnrolledIn)
	ctx.Step(`^I am an account not enrolled in any experiment$`, steps.accountNotEnrolled)

	// Backup-id steps
	ctx.Step(`^I commit a new backup-id$`, steps.commitNewBackupID)
	ctx.Step(`^I commit the backup-id request "([^"]*)"$`, steps.commitRawRequest)

	// Credential steps
	ctx.Step(`^I request credentials for days (-?\d+) through (-?\d+)$`, steps.requestCredentials)
	ctx.Step(`^I should receive (\d+) credentials$`, steps.shouldReceiveCredentials)
	ctx.Step(`^credentials for days (\d+) through (\d+) should be at level "([^"]*)"$`, steps.credentialsShouldBeAtLevel)

	// Receipt steps
	ctx.Step(`^I redeem a level (\d+) receipt expiring in (-?\d+) days$`, steps.redeemReceipt)
	ctx.Step(`^I redeem the same receipt again$`, steps.redeemSameReceipt)
}

type backupSteps struct {
	tc          TestContext
	credentials []credential
}

type credential struct {
	Credential     []byte `json:"credential"`
	RedemptionTime int64  `json:"redemptionTime"`
}

func (s *backupSteps) accountEnrolledIn(ctx context.Context, experiment string) error {
	return s.tc.UseAccount(experiment)
}

func (s *backupSteps) accountNotEnrolled(ctx context.Context) error {
	return s.tc.UseAccount("")
}

func (s *backupSteps) commitNewBackupID(ctx context.Context) error {
	backupID := make([]byte, 32)
	if _, err := rand.Read(backupID); err != nil {
		return err
	}
	request, err := zkops.NewCredentialRequest(backupID, nil)
	if err != nil {
		return err
	}
	return s.commitRawRequest(ctx, base64.StdEncoding.EncodeToString(request))
}

func (s *backupSteps) commitRawRequest(ctx context.Context, encoded string) error {
	return s.tc.PUT("/v1/archives/backupid", map[string]string{
		"backupAuthCredentialRequest": encoded,
	})
}

func (s *backupSteps) requestCredentials(ctx context.Context, startDay, endDay int) error {
	today := s.tc.Today()
	start := today.AddDate(0, 0, startDay).Unix()
	end := today.AddDate(0, 0, endDay).Unix()
	if err := s.tc.AuthenticatedGET(fmt.Sprintf("/v1/archives/auth?redemptionStartSeconds=%d&redemptionEndSeconds=%d", start, end)); err != nil {
		return err
	}

	s.credentials = nil
	if s.tc.GetLastResponseStatus() != 200 {
		return nil
	}
	var body struct {
		Credentials []credential `json:"credentials"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return fmt.Errorf("failed to parse credentials: %w", err)
	}
	s.credentials = body.Credentials
	return nil
}

func (s *backupSteps) shouldReceiveCredentials(ctx context.Context, n int) error {
	if len(s.credentials) != n {
		return fmt.Errorf("expected %d credentials but got %d", n, len(s.credentials))
	}
	today := s.tc.Today()
	for i, c := range s.credentials {
		if got := time.Unix(c.RedemptionTime, 0).UTC(); got.Before(today) || !got.Equal(models.StartOfDay(got)) {
			return fmt.Errorf("credential %d has redemption time %s, want a day boundary from today", i, got)
		}
	}
	return nil
}

func (s *backupSteps) credentialsShouldBeAtLevel(ctx context.Context, fromDay, toDay int, level string) error {
	if toDay >= len(s.credentials) {
		return fmt.Errorf("only %d credentials were issued", len(s.credentials))
	}
	for day := fromDay; day <= toDay; day++ {
		c := s.credentials[day]
		issued, err := s.tc.VerifyCredential(c.Credential)
		if err != nil {
			return fmt.Errorf("credential for day %d does not verify: %w", day, err)
		}
		if issued.RedemptionTime.Unix() != c.RedemptionTime {
			return fmt.Errorf("credential for day %d signs time %d but reports %d", day, issued.RedemptionTime.Unix(), c.RedemptionTime)
		}
		if issued.Level.String() != level {
			return fmt.Errorf("credential for day %d has level %s, want %s", day, issued.Level, level)
		}
	}
	return nil
}

func (s *backupSteps) redeemReceipt(ctx context.Context, level int64, days int) error {
	var serial id.ReceiptSerial
	if _, err := rand.Read(serial[:]); err != nil {
		return err
	}
	presentation, err := s.tc.PresentReceipt(models.Receipt{
		Serial:       serial,
		Expiration:   s.tc.Today().AddDate(0, 0, days),
		ReceiptLevel: level,
	})
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(presentation)
	s.tc.SetLastPresentation(encoded)
	return s.redeem(encoded)
}

func (s *backupSteps) redeemSameReceipt(ctx context.Context) error {
	if s.tc.GetLastPresentation() == "" {
		return fmt.Errorf("no receipt was redeemed in this scenario")
	}
	return s.redeem(s.tc.GetLastPresentation())
}

func (s *backupSteps) redeem(encoded string) error {
	return s.tc.POST("/v1/archives/redeem-receipt", map[string]string{
		"receiptCredentialPresentation": encoded,
	})
}
