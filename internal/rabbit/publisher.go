package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	"farmerfriend-backend/internal/logger"
	"farmerfriend-backend/internal/notify"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Publisher relays notifications through the fanout exchange instead of
// sending them in-process. It satisfies notify.Sender.
type Publisher struct {
	ch       channelPublisher
	exchange string
}

func NewPublisher(ch *amqp091.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

func (p *Publisher) Send(ctx context.Context, m notify.Message) error {
	correlationID := logger.RequestIDFrom(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	body, err := json.Marshal(NotificationEvent{
		CorrelationID: correlationID,
		Exchange:      p.exchange,
		Message:       m,
	})
	if err != nil {
		return fmt.Errorf("encoding notification event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp091.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		CorrelationId: correlationID,
		Type:          string(m.Kind),
		Body:          body,
	})
	if err != nil {
		return fmt.Errorf("publishing %s notification: %w", m.Kind, err)
	}
	return nil
}
