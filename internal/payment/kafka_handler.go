package payment

import (
	"context"
	"encoding/json"
	"log/slog"

	"finetrack/internal/fines/models"
	"finetrack/internal/platform/kafka/consumer"
)

// ConfirmationHandler consumes processor confirmation events. Malformed and
// permanently rejected events are logged and committed; transient failures are
// returned so the consumer retries them.
type ConfirmationHandler struct {
	processor *Processor
	logger    *slog.Logger
}

func NewConfirmationHandler(processor *Processor, logger *slog.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{processor: processor, logger: logger}
}

func (h *ConfirmationHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	var conf models.PaymentConfirmation
	if err := json.Unmarshal(msg.Value, &conf); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal payment confirmation",
			"key", string(msg.Key),
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}
	if conf.EventID == "" {
		conf.EventID = msg.Headers["event_id"]
	}

	outcome, err := h.processor.Process(ctx, conf)
	if err != nil {
		if IsTransient(err) {
			return err
		}
		h.logger.WarnContext(ctx, "payment confirmation rejected",
			"event_id", conf.EventID,
			"fine_id", conf.FineID,
			"error", err,
		)
		return nil
	}
	h.logger.InfoContext(ctx, "payment confirmation processed",
		"event_id", conf.EventID,
		"fine_id", conf.FineID,
		"outcome", outcome,
	)
	return nil
}
