// Package handler exposes the payment processor's confirmation webhook.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"finetrack/internal/fines/models"
	"finetrack/internal/payment"
	id "finetrack/pkg/domain"
	dErrors "finetrack/pkg/domain-errors"
	"finetrack/pkg/platform/audit"
	"finetrack/pkg/platform/httputil"
	request "finetrack/pkg/platform/middleware/request"
	"finetrack/pkg/requestcontext"
	"finetrack/pkg/secrets"
)

// SecretHeader carries the shared webhook secret.
const SecretHeader = "X-Webhook-Secret"

// Processor applies a confirmation once per event id.
type Processor interface {
	Process(ctx context.Context, conf models.PaymentConfirmation) (payment.Outcome, error)
}

// AuditPublisher records rejected webhook calls.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Handler struct {
	processor  Processor
	secretHash string
	audit      AuditPublisher
	logger     *slog.Logger
}

func New(processor Processor, secretHash string, auditor AuditPublisher, logger *slog.Logger) *Handler {
	return &Handler{processor: processor, secretHash: secretHash, audit: auditor, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/payments/confirm", h.handleConfirm)
}

// confirmRequest is the processor's confirmation payload.
type confirmRequest struct {
	EventID      string          `json:"eventId"`
	FineID       string          `json:"fineId"`
	IdentityCode string          `json:"identityCode"`
	Amount       decimal.Decimal `json:"amount"`
	Reference    string          `json:"reference"`
	ConfirmedAt  time.Time       `json:"confirmedAt"`
}

func (c *confirmRequest) Normalize() {
	c.EventID = strings.TrimSpace(c.EventID)
	c.FineID = strings.TrimSpace(c.FineID)
	c.IdentityCode = strings.TrimSpace(c.IdentityCode)
	c.Reference = strings.TrimSpace(c.Reference)
}

func (c *confirmRequest) Validate() error {
	if c.EventID == "" || c.FineID == "" || c.IdentityCode == "" {
		return dErrors.New(dErrors.CodeValidation, "eventId, fineId and identityCode are required")
	}
	return nil
}

type confirmResponse struct {
	EventID string          `json:"eventId"`
	FineID  string          `json:"fineId"`
	Outcome payment.Outcome `json:"outcome"`
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	if err := h.verify(r); err != nil {
		h.logger.WarnContext(ctx, "payment webhook rejected",
			"request_id", requestID,
			"error", err,
		)
		if h.audit != nil {
			_ = h.audit.Emit(ctx, audit.Event{
				Action:    string(audit.EventWebhookRejected),
				ActorID:   "payment-webhook",
				Decision:  "rejected",
				Reason:    "bad_secret",
				RequestID: requestID,
				IP:        requestcontext.ClientIP(ctx),
			})
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid webhook secret"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[confirmRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	outcome, err := h.processor.Process(ctx, models.PaymentConfirmation{
		EventID:      req.EventID,
		FineID:       id.FineID(req.FineID),
		IdentityCode: id.IdentityCode(req.IdentityCode),
		Amount:       req.Amount,
		Reference:    req.Reference,
		ConfirmedAt:  req.ConfirmedAt,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "payment confirmation failed",
			"request_id", requestID,
			"event_id", req.EventID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, confirmResponse{
		EventID: req.EventID,
		FineID:  req.FineID,
		Outcome: outcome,
	})
}

func (h *Handler) verify(r *http.Request) error {
	if h.secretHash == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "webhook secret not configured")
	}
	return secrets.Verify(r.Header.Get(SecretHeader), h.secretHash)
}
