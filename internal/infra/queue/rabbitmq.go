package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"tg-channel-bot/internal/domain"
	"tg-channel-bot/internal/infra/metrics"
)

// RabbitDeliveryQueue реализует очередь задач доставки поверх AMQP.
type RabbitDeliveryQueue struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	queueName string
	msgs      <-chan amqp.Delivery
}

// NewRabbitDeliveryQueue подключается к брокеру и объявляет устойчивую очередь.
func NewRabbitDeliveryQueue(url, queueName string) (*RabbitDeliveryQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("подключение к rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("открытие канала: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("объявление очереди: %w", err)
	}
	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("подписка на очередь: %w", err)
	}
	return &RabbitDeliveryQueue{conn: conn, ch: ch, queueName: queueName, msgs: msgs}, nil
}

// Enqueue публикует задачу в очередь.
func (q *RabbitDeliveryQueue) Enqueue(ctx context.Context, job domain.DeliveryJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	start := time.Now()
	err = q.ch.PublishWithContext(ctx, "", q.queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	metrics.ObserveNetworkRequest("rabbitmq", "publish", q.queueName, start, err)
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Pop блокирующе читает задачу из очереди.
func (q *RabbitDeliveryQueue) Pop(ctx context.Context) (domain.DeliveryJob, error) {
	for {
		select {
		case <-ctx.Done():
			return domain.DeliveryJob{}, ctx.Err()
		case msg, ok := <-q.msgs:
			if !ok {
				return domain.DeliveryJob{}, errors.New("rabbitmq queue: канал закрыт")
			}
			var job domain.DeliveryJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				_ = msg.Nack(false, false)
				return domain.DeliveryJob{}, fmt.Errorf("decode job: %w", err)
			}
			if err := msg.Ack(false); err != nil {
				return domain.DeliveryJob{}, fmt.Errorf("ack job: %w", err)
			}
			return job, nil
		}
	}
}

// Close освобождает соединение с брокером.
func (q *RabbitDeliveryQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		_ = q.conn.Close()
		return err
	}
	return q.conn.Close()
}
