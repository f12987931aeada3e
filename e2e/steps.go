package e2e

import (
	"github.com/cucumber/godog"

	"finetrack/e2e/steps/common"
	"finetrack/e2e/steps/fines"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	fines.RegisterSteps(ctx, tc)
}
