package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finetrack/internal/platform/kafka/consumer"
	audit "finetrack/pkg/platform/audit"
	auditpg "finetrack/pkg/platform/audit/store/postgres"
)

type recordingStore struct {
	ids    []uuid.UUID
	events []audit.Event
	err    error
}

func (s *recordingStore) AppendWithID(_ context.Context, eventID uuid.UUID, event audit.Event) error {
	if s.err != nil {
		return s.err
	}
	s.ids = append(s.ids, eventID)
	s.events = append(s.events, event)
	return nil
}

type countingHandler struct{ n int }

func (h *countingHandler) Handle(context.Context, *consumer.Message) error {
	h.n++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuditHandler(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	payload := auditpg.ToPayload(audit.Event{
		ID:        eventID.String(),
		Timestamp: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		Action:    string(audit.EventFineIssued),
		Subject:   "f1",
	})
	value, err := json.Marshal(payload)
	require.NoError(t, err)

	t.Run("materializes", func(t *testing.T) {
		store := &recordingStore{}
		h := NewAuditHandler(store, discardLogger())
		require.NoError(t, h.Handle(ctx, &consumer.Message{Value: value}))
		require.Len(t, store.events, 1)
		assert.Equal(t, eventID, store.ids[0])
		assert.Equal(t, audit.CategoryCompliance, store.events[0].Category)
	})

	t.Run("malformed payload is skipped", func(t *testing.T) {
		store := &recordingStore{}
		h := NewAuditHandler(store, discardLogger())
		assert.NoError(t, h.Handle(ctx, &consumer.Message{Value: []byte("{")}))
		assert.Empty(t, store.events)
	})

	t.Run("store failure is retried", func(t *testing.T) {
		h := NewAuditHandler(&recordingStore{err: errors.New("db down")}, discardLogger())
		assert.Error(t, h.Handle(ctx, &consumer.Message{Value: value}))
	})
}

func TestRouter(t *testing.T) {
	ctx := context.Background()
	payments := &countingHandler{}
	var audited int

	r := NewRouter(discardLogger())
	r.Register("payments.confirmed", payments)
	r.Register("finetrack.audit", HandlerFunc(func(context.Context, *consumer.Message) error {
		audited++
		return nil
	}))
	assert.Equal(t, []string{"finetrack.audit", "payments.confirmed"}, r.Topics())

	require.NoError(t, r.Handle(ctx, &consumer.Message{Topic: "payments.confirmed"}))
	require.NoError(t, r.Handle(ctx, &consumer.Message{Topic: "finetrack.audit"}))
	require.NoError(t, r.Handle(ctx, &consumer.Message{Topic: "unknown"}), "unrouted messages are committed")
	assert.Equal(t, 1, payments.n)
	assert.Equal(t, 1, audited)

	failing := NewRouter(discardLogger())
	failing.Register("payments.confirmed", HandlerFunc(func(context.Context, *consumer.Message) error {
		return errors.New("transient")
	}))
	assert.Error(t, failing.Handle(ctx, &consumer.Message{Topic: "payments.confirmed"}))
}
