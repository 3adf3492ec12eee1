package e2e

import (
	"github.com/cucumber/godog"

	"backupauth/e2e/steps/backup"
	"backupauth/e2e/steps/common"
	"backupauth/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	backup.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
