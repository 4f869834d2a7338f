package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Channel часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// PublishOption дополняет свойства публикуемого сообщения.
type PublishOption func(*amqp.Publishing)

// WithMessageID задаёт message-id, по нему сообщение находится в логах брокера и отправителя.
func WithMessageID(id string) PublishOption {
	return func(p *amqp.Publishing) { p.MessageId = id }
}

// PublishMessage публикует сообщение как persistent JSON с отметкой времени.
func PublishMessage(ch Channel, exchange, routingKey string, message any, opts ...PublishOption) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&msg)
	}

	if err := ch.Publish(exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("%s %s/%s: %w", op, exchange, routingKey, err)
	}
	return nil
}
