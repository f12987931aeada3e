// Package consumer holds the Kafka message handlers of the service: the
// topic router and the audit event materializer.
package consumer

import (
	"context"
	"log/slog"
	"slices"

	"finetrack/internal/platform/kafka/consumer"
)

// TopicHandler processes one message. A returned error leaves the offset
// uncommitted so the message is redelivered.
type TopicHandler interface {
	Handle(ctx context.Context, msg *consumer.Message) error
}

// HandlerFunc adapts a function to TopicHandler.
type HandlerFunc func(ctx context.Context, msg *consumer.Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *consumer.Message) error {
	return f(ctx, msg)
}

// Router sends each message to the handler registered for its topic. The
// consumer subscribes to exactly Topics().
type Router struct {
	handlers map[string]TopicHandler
	logger   *slog.Logger
}

func NewRouter(logger *slog.Logger) *Router {
	return &Router{handlers: make(map[string]TopicHandler), logger: logger}
}

// Register binds topic to h. Registering a topic twice replaces the handler.
func (r *Router) Register(topic string, h TopicHandler) {
	r.handlers[topic] = h
}

// Topics lists the registered topics in sorted order.
func (r *Router) Topics() []string {
	topics := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		topics = append(topics, topic)
	}
	slices.Sort(topics)
	return topics
}

// Handle dispatches msg. Messages on unregistered topics are committed and
// dropped.
func (r *Router) Handle(ctx context.Context, msg *consumer.Message) error {
	h, ok := r.handlers[msg.Topic]
	if !ok {
		r.logger.WarnContext(ctx, "dropping message on unrouted topic",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		return nil
	}
	return h.Handle(ctx, msg)
}
