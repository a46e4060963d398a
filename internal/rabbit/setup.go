// setup.go
package rabbit

import (
	"fmt"

	"farmerfriend-backend/internal/logger"
	"farmerfriend-backend/internal/notify"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DeclareExchange makes sure the fanout exchange exists before anyone publishes.
func DeclareExchange(ch *amqp091.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, amqp091.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}
	return nil
}

// SetupConsumers binds the mail queue to the notification exchange and hands
// every delivery to a NotificationConsumer backed by sender.
func SetupConsumers(ch *amqp091.Channel, exchange, queue string, sender notify.Sender) error {
	consumer := NewNotificationConsumer(sender)
	log := logger.L().With(zap.String("exchange", exchange), zap.String("queue", queue))

	q, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declaring queue: %w", err)
	}

	// fanout ignores the routing key
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return fmt.Errorf("binding queue: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consuming queue: %w", err)
	}

	go func() {
		for m := range msgs {
			if err := consumer.Handle(m.Body); err != nil {
				// not requeued: a poison message would loop forever
				_ = m.Nack(false, false)
				continue
			}
			_ = m.Ack(false)
		}
		log.Info("notification consumer stopped")
	}()

	log.Info("subscribed to notification exchange")
	return nil
}
