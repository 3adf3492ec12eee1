package service

//go:generate mockgen -source=../ports/ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"backupauth/internal/backup/config"
	"backupauth/internal/backup/models"
	"backupauth/internal/backup/service/mocks"
	id "backupauth/pkg/domain"
	"backupauth/pkg/platform/audit"
	"backupauth/pkg/platform/audit/publisher"
	auditmemory "backupauth/pkg/platform/audit/store/memory"
	"backupauth/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	accounts    *mocks.MockAccountStore
	ledger      *mocks.MockReceiptLedger
	limiter     *mocks.MockRateLimiter
	enrollment  *mocks.MockEnrollmentOracle
	credentials *mocks.MockCredentialOperations
	receipts    *mocks.MockReceiptVerifier
	auditStore  *auditmemory.InMemoryStore
	service     *Service

	accountID id.AccountID
	now       time.Time
	today     time.Time
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.accounts = mocks.NewMockAccountStore(s.ctrl)
	s.ledger = mocks.NewMockReceiptLedger(s.ctrl)
	s.limiter = mocks.NewMockRateLimiter(s.ctrl)
	s.enrollment = mocks.NewMockEnrollmentOracle(s.ctrl)
	s.credentials = mocks.NewMockCredentialOperations(s.ctrl)
	s.receipts = mocks.NewMockReceiptVerifier(s.ctrl)
	s.auditStore = auditmemory.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var err error
	s.service, err = New(Dependencies{
		Accounts:    s.accounts,
		Ledger:      s.ledger,
		Limiter:     s.limiter,
		Enrollment:  s.enrollment,
		Credentials: s.credentials,
		Receipts:    s.receipts,
	},
		WithLogger(logger),
		WithAuditLogger(audit.NewLogger(logger, publisher.NewPublisher(s.auditStore))),
	)
	s.Require().NoError(err)

	s.accountID = id.NewAccountID()
	s.now = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	s.today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

// Shared fixture helpers

func (s *ServiceSuite) day(n int) time.Time {
	return s.today.Add(time.Duration(n) * config.Day)
}

// enroll sets the enrollment answers for the suite account. Calls are optional so
// tests can short-circuit before the policy is consulted.
func (s *ServiceSuite) enroll(messages, media bool) {
	s.enrollment.EXPECT().IsEnrolled(gomock.Any(), s.accountID, config.ExperimentBackupMedia).Return(media).AnyTimes()
	s.enrollment.EXPECT().IsEnrolled(gomock.Any(), s.accountID, config.ExperimentBackup).Return(messages).AnyTimes()
}

// expectUpdate applies the mutation to current, the way a store would on a
// conflict-free attempt, and returns the mutated snapshot.
func (s *ServiceSuite) expectUpdate(current models.Account) *gomock.Call {
	return s.accounts.EXPECT().Update(gomock.Any(), s.accountID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ id.AccountID, mutate models.Mutation) (models.Account, error) {
			next, changed := mutate(current)
			if changed {
				next.Version = current.Version + 1
			}
			return next, nil
		})
}

func (s *ServiceSuite) auditActions() []string {
	var actions []string
	for _, e := range s.auditStore.ListByAccount(s.accountID) {
		actions = append(actions, e.Action)
	}
	return actions
}

func (s *ServiceSuite) TestNewRequiresDependencies() {
	_, err := New(Dependencies{})
	s.Error(err)
	s.Contains(err.Error(), "account store is required")
}
