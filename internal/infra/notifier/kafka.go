package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"storefront-core/internal/pkg/config"
)

// KafkaNotifier publishes order lifecycle events. Publishing is best effort:
// failures are logged and never propagate to the command that produced them.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(cfg config.KafkaConfig) (*KafkaNotifier, func()) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.NotificationTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
	}
	return &KafkaNotifier{writer: writer}, func() {
		if err := writer.Close(); err != nil {
			slog.Warn("failed to close kafka writer", "error", err)
		}
	}
}

type envelope struct {
	Event      string    `json:"event"`
	OrderID    uuid.UUID `json:"order_id"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (n *KafkaNotifier) OrderEvent(ctx context.Context, event string, orderID uuid.UUID, payload any) {
	value, err := json.Marshal(envelope{
		Event:      event,
		OrderID:    orderID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode order event", "event", event, "error", err)
		return
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID.String()),
		Value: value,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to publish order event",
			"event", event, "order_id", orderID, "error", err)
	}
}
