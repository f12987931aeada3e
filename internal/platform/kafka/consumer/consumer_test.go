package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestFromRecord(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	msg := FromRecord(&kgo.Record{
		Topic:     "payments.confirmed",
		Partition: 2,
		Offset:    41,
		Key:       []byte("evt-1"),
		Value:     []byte(`{}`),
		Timestamp: ts,
		Headers:   []kgo.RecordHeader{{Key: "source", Value: []byte("gateway")}},
	})
	assert.Equal(t, "payments.confirmed", msg.Topic)
	assert.Equal(t, int32(2), msg.Partition)
	assert.Equal(t, int64(41), msg.Offset)
	assert.Equal(t, "evt-1", string(msg.Key))
	assert.Equal(t, "gateway", msg.Headers["source"])
	assert.Equal(t, ts, msg.Timestamp)

	assert.Nil(t, FromRecord(&kgo.Record{}).Headers)
}

type flakyHandler struct {
	failures int
	calls    int
}

func (h *flakyHandler) Handle(context.Context, *Message) error {
	h.calls++
	if h.calls <= h.failures {
		return errors.New("transient")
	}
	return nil
}

func TestDispatchRetries(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("succeeds within attempt budget", func(t *testing.T) {
		h := &flakyHandler{failures: 2}
		c := &Consumer{handler: h, logger: logger, maxAttempts: 3}
		c.dispatch(context.Background(), &Message{})
		assert.Equal(t, 3, h.calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		h := &flakyHandler{failures: 10}
		c := &Consumer{handler: h, logger: logger, maxAttempts: 2}
		c.dispatch(context.Background(), &Message{})
		assert.Equal(t, 2, h.calls)
	})
}
