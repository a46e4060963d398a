package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"farmerfriend-backend/internal/logger"
	"farmerfriend-backend/internal/notify"

	"go.uber.org/zap"
)

const handleTimeout = 30 * time.Second

// NotificationConsumer turns relayed notification events into emails.
type NotificationConsumer struct {
	Sender notify.Sender
}

func NewNotificationConsumer(s notify.Sender) *NotificationConsumer {
	return &NotificationConsumer{Sender: s}
}

// NotificationEvent is the envelope published on the notification exchange.
type NotificationEvent struct {
	CorrelationID string         `json:"correlation_id"`
	Exchange      string         `json:"exchange"`
	Message       notify.Message `json:"message"`
}

func (c *NotificationConsumer) Handle(body []byte) error {
	var event NotificationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decoding notification event: %w", err)
	}

	ctx, cancel := context.WithTimeout(logger.WithRequestID(context.Background(), event.CorrelationID), handleTimeout)
	defer cancel()

	log := logger.FromCtx(ctx).With(zap.String("kind", string(event.Message.Kind)))
	if err := c.Sender.Send(ctx, event.Message); err != nil {
		log.Error("relayed notification failed", zap.Error(err))
		return err
	}

	log.Info("relayed notification sent")
	return nil
}
