package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/sl"
)

// ErrPermanent помечает сообщение, которое не обработать и при повторной доставке:
// например, тело не разбирается. Такое сообщение снимается с очереди без возврата.
var ErrPermanent = errors.New("permanent message failure")

const maxInFlight = 10

// ConsumerMessage читает очередь queueName и передаёт тела сообщений handler.
// Ошибка handler возвращает сообщение в очередь, кроме ошибок ErrPermanent.
// Одновременно обрабатывается не больше maxInFlight сообщений.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, handler func([]byte) error, log *slog.Logger) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("queue", queueName))
	sem := make(chan struct{}, maxInFlight)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					log.Info("delivery channel closed", sl.Op(op))
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					settle(d, handler, log)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// settle обрабатывает одно сообщение и подтверждает его брокеру.
func settle(d amqp.Delivery, handler func([]byte) error, log *slog.Logger) {
	const op = "rabbitmq.settle"

	err := handler(d.Body)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Op(op), sl.Err(ackErr))
		}
	case errors.Is(err, ErrPermanent):
		log.Error("dropping message", sl.Op(op), slog.Bool("redelivered", d.Redelivered), sl.Err(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("failed to reject message", sl.Op(op), sl.Err(nackErr))
		}
	default:
		log.Warn("requeueing message", sl.Op(op), slog.Bool("redelivered", d.Redelivered), sl.Err(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Op(op), sl.Err(nackErr))
		}
	}
}
