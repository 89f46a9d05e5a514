package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/fare-aggregator/internal/lib/sl"
)

// ErrBadMessage помечает сообщение, которое не будет обработано ни при
// каком повторе (например, нечитаемый JSON). Такое сообщение отбрасывается
// без возврата в очередь, чтобы не зациклить доставку.
var ErrBadMessage = errors.New("message cannot be processed")

// ConsumerMessage создает потребителя сообщений из очереди RabbitMQ.
// workers ограничивает число одновременных обработчиков. Ошибка
// обработчика, обернутая в ErrBadMessage, отбрасывает сообщение;
// любая другая возвращает его в очередь для повтора.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, workers int, log *slog.Logger, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	if workers < 1 {
		workers = 1
	}
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, workers)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(delivery amqp.Delivery) {
					defer func() { <-sem }()
					if err := handler(delivery.Body); err != nil {
						if nackErr := delivery.Nack(false, requeueOn(err)); nackErr != nil {
							log.Error("failed to nack message", sl.Err(nackErr))
						}
						return
					}
					if ackErr := delivery.Ack(false); ackErr != nil {
						log.Error("failed to ack message", sl.Err(ackErr))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// requeueOn решает, возвращать ли сообщение в очередь после ошибки:
// битое сообщение отбрасывается, временный сбой повторяется.
func requeueOn(err error) bool {
	return !errors.Is(err, ErrBadMessage)
}
