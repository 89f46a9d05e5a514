package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HistoryPublisher отправляет пакеты точек истории цен в очередь.
// Реализует приемник истории для сэмплера: одно сообщение — один
// пакет по маршруту, запись в базу делает потребитель.
type HistoryPublisher struct {
	ch *amqp.Channel
}

// NewHistoryPublisher создает новый HistoryPublisher
func NewHistoryPublisher(ch *amqp.Channel) *HistoryPublisher {
	return &HistoryPublisher{ch: ch}
}

// AppendBatch публикует пакет точек одним сообщением
func (p *HistoryPublisher) AppendBatch(_ context.Context, points []models.DailyPricePoint) error {
	const op = "rabbitmq.AppendBatch"
	if err := PublishMessage(p.ch, "fares", "daily-prices", points); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
