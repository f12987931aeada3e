package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"finetrack/internal/platform/kafka/consumer"
	audit "finetrack/pkg/platform/audit"
	auditpg "finetrack/pkg/platform/audit/store/postgres"
)

// EventStore materializes relayed audit events for querying.
type EventStore interface {
	AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error
}

// AuditHandler writes events published by the outbox relay into the
// queryable audit table. Writes are idempotent on the event id.
type AuditHandler struct {
	store  EventStore
	logger *slog.Logger
}

func NewAuditHandler(store EventStore, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{store: store, logger: logger}
}

// Handle processes one relayed audit event.
func (h *AuditHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	var payload auditpg.Payload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal audit payload",
			"key", string(msg.Key),
			"error", err,
		)
		// Return nil to commit - malformed messages should not block
		return nil
	}

	eventID, err := uuid.Parse(payload.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to parse audit event ID",
			"id", payload.ID,
			"error", err,
		)
		return nil
	}

	event, err := payload.Event()
	if err != nil {
		h.logger.ErrorContext(ctx, "invalid audit event",
			"event_id", eventID,
			"error", err,
		)
		return nil
	}

	if err := h.store.AppendWithID(ctx, eventID, event); err != nil {
		return fmt.Errorf("store audit event: %w", err)
	}

	h.logger.DebugContext(ctx, "stored audit event",
		"event_id", eventID,
		"action", event.Action,
		"category", event.Category,
	)
	return nil
}
