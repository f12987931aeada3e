// Package payment connects the fines service to the external payment
// processor: it builds hosted checkout redirects and takes in the processor's
// confirmation events, once per event id.
package payment

import (
	"context"
	"errors"
	"net/url"

	"finetrack/internal/fines/models"
)

// HostedCheckout sends payers to the processor's hosted page. The processor
// reports the outcome through a confirmation event, never through the redirect.
type HostedCheckout struct {
	checkoutURL *url.URL
	returnURL   string
	cancelURL   string
}

func NewHostedCheckout(checkoutURL, returnURL, cancelURL string) (*HostedCheckout, error) {
	u, err := url.Parse(checkoutURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("checkout url must be absolute")
	}
	return &HostedCheckout{checkoutURL: u, returnURL: returnURL, cancelURL: cancelURL}, nil
}

// Reference is the processor-side reference for a fine.
func Reference(fine models.EnrichedFineView) string {
	return "FT-" + fine.FineID.String()
}

func (c *HostedCheckout) CheckoutURL(_ context.Context, fine models.EnrichedFineView) (string, error) {
	u := *c.checkoutURL
	q := u.Query()
	q.Set("fine_id", fine.FineID.String())
	q.Set("reference", Reference(fine))
	q.Set("amount", fine.Amount.StringFixed(2))
	q.Set("description", fine.OffenceName)
	if c.returnURL != "" {
		q.Set("return_url", c.returnURL)
	}
	if c.cancelURL != "" {
		q.Set("cancel_url", c.cancelURL)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
