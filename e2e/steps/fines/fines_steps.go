// Package fines holds the issuance, listing and payment steps.
package fines

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Request(method, path string, body any, headers map[string]string) error
	POST(path string, body any) error
	Expand(s string) string
	WebhookSecret() string
}

// RegisterSteps registers fine-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &fineSteps{tc: tc}

	ctx.Step(`^I issue a fine with:$`, steps.issueFine)
	ctx.Step(`^I start payment of fine "([^"]*)"$`, steps.startPayment)
	ctx.Step(`^the processor confirms payment "([^"]*)" of fine "([^"]*)" by "([^"]*)"$`, steps.confirmPayment)
	ctx.Step(`^the processor confirms payment "([^"]*)" of fine "([^"]*)" by "([^"]*)" with secret "([^"]*)"$`, steps.confirmPaymentWithSecret)
}

type fineSteps struct {
	tc TestContext
}

// issueFine posts a draft built from a two-column field/value table.
func (s *fineSteps) issueFine(_ context.Context, table *godog.Table) error {
	draft := map[string]string{}
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("fine table rows need a field and a value")
		}
		draft[row.Cells[0].Value] = s.tc.Expand(row.Cells[1].Value)
	}
	return s.tc.POST("/fines", draft)
}

func (s *fineSteps) startPayment(_ context.Context, fineID string) error {
	return s.tc.POST("/civilians/me/fines/"+s.tc.Expand(fineID)+"/pay", nil)
}

func (s *fineSteps) confirmPayment(ctx context.Context, eventID, fineID, code string) error {
	secret := s.tc.WebhookSecret()
	if secret == "" {
		return errors.New("E2E_WEBHOOK_SECRET must be set for payment scenarios")
	}
	return s.confirmPaymentWithSecret(ctx, eventID, fineID, code, secret)
}

func (s *fineSteps) confirmPaymentWithSecret(_ context.Context, eventID, fineID, code, secret string) error {
	body := map[string]string{
		"eventId":      s.tc.Expand(eventID),
		"fineId":       s.tc.Expand(fineID),
		"identityCode": code,
	}
	return s.tc.Request(http.MethodPost, "/payments/confirm", body, map[string]string{
		"X-Webhook-Secret": secret,
	})
}
