package payment

import (
	"context"
	"log/slog"
	"strings"

	"finetrack/internal/fines/models"
	"finetrack/internal/fines/service"
	dErrors "finetrack/pkg/domain-errors"
)

// Confirmer applies a confirmed payment to a fine.
type Confirmer interface {
	ConfirmPayment(ctx context.Context, conf models.PaymentConfirmation) (service.ConfirmResult, error)
}

// Outcome of processing one confirmation event.
type Outcome string

const (
	OutcomeApplied     Outcome = "applied"
	OutcomeAlreadyPaid Outcome = "already_paid"
	OutcomeDuplicate   Outcome = "duplicate_event"
)

// Processor dedupes confirmation events by id before handing them to the
// fines service. Both the Kafka consumer and the webhook go through it.
type Processor struct {
	confirmer Confirmer
	dedupe    Deduper
	logger    *slog.Logger
}

func NewProcessor(confirmer Confirmer, dedupe Deduper, logger *slog.Logger) *Processor {
	return &Processor{confirmer: confirmer, dedupe: dedupe, logger: logger}
}

// Process applies conf once. A transient failure releases the claim so the
// event can be redelivered; a permanent rejection keeps it.
func (p *Processor) Process(ctx context.Context, conf models.PaymentConfirmation) (Outcome, error) {
	conf.EventID = strings.TrimSpace(conf.EventID)
	if conf.EventID == "" {
		return "", dErrors.New(dErrors.CodeValidation, "event id is required")
	}

	claimed, err := p.dedupe.Claim(ctx, conf.EventID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "dedupe store unavailable")
	}
	if !claimed {
		p.logger.InfoContext(ctx, "duplicate payment event ignored", "event_id", conf.EventID)
		return OutcomeDuplicate, nil
	}

	result, err := p.confirmer.ConfirmPayment(ctx, conf)
	if err != nil {
		if IsTransient(err) {
			if rerr := p.dedupe.Release(ctx, conf.EventID); rerr != nil {
				p.logger.ErrorContext(ctx, "failed to release payment event claim",
					"event_id", conf.EventID,
					"error", rerr,
				)
			}
		}
		return "", err
	}
	if result.AlreadyPaid {
		return OutcomeAlreadyPaid, nil
	}
	return OutcomeApplied, nil
}

// IsTransient reports whether a confirmation failure may succeed on retry.
func IsTransient(err error) bool {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeUnavailable, dErrors.CodeInternal:
		return true
	default:
		return false
	}
}
