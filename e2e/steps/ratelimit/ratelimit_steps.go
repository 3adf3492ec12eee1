package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"

	"backupauth/internal/zkops"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	PUT(path string, body interface{}) error
	GetLastResponseStatus() int
	GetLastResponseHeader(name string) string
	GetLastResponseBody() []byte
}

// RegisterSteps registers rate-limiting step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I commit (\d+) different backup-ids$`, steps.commitDifferentBackupIDs)
	ctx.Step(`^all (\d+) requests should succeed with status (\d+)$`, steps.allNRequestsShouldSucceedWithStatus)
	ctx.Step(`^the Retry-After header should be at most (\d+) seconds$`, steps.retryAfterAtMost)
}

type ratelimitSteps struct {
	tc       TestContext
	statuses []int
}

func (s *ratelimitSteps) commitDifferentBackupIDs(ctx context.Context, n int) error {
	s.statuses = s.statuses[:0]
	for i := 0; i < n; i++ {
		backupID := make([]byte, 32)
		if _, err := rand.Read(backupID); err != nil {
			return err
		}
		request, err := zkops.NewCredentialRequest(backupID, nil)
		if err != nil {
			return err
		}
		if err := s.tc.PUT("/v1/archives/backupid", map[string]string{
			"backupAuthCredentialRequest": base64.StdEncoding.EncodeToString(request),
		}); err != nil {
			return err
		}
		s.statuses = append(s.statuses, s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *ratelimitSteps) allNRequestsShouldSucceedWithStatus(ctx context.Context, n, status int) error {
	if len(s.statuses) != n {
		return fmt.Errorf("made %d requests, expected %d", len(s.statuses), n)
	}
	for i, got := range s.statuses {
		if got != status {
			return fmt.Errorf("request %d returned %d, expected %d", i+1, got, status)
		}
	}
	return nil
}

func (s *ratelimitSteps) retryAfterAtMost(ctx context.Context, maxSeconds int) error {
	raw := s.tc.GetLastResponseHeader("Retry-After")
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("Retry-After %q is not a number of seconds", raw)
	}
	if seconds < 0 || seconds > maxSeconds {
		return fmt.Errorf("Retry-After %d outside [0, %d]", seconds, maxSeconds)
	}
	return nil
}
